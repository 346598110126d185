package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shukatsu-reminders/internal/config"
	"github.com/shukatsu-reminders/internal/transport/http/handler"
	appmiddleware "github.com/shukatsu-reminders/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", appmiddleware.DevUserHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if deps.Metrics != nil {
		r.Use(appmiddleware.Metrics(deps.Metrics))
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = appmiddleware.DevIdentity
	}

	reminderRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	healthH := handler.NewHealthHandler()
	reminderH := handler.NewReminderHandler(deps.Reminders)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(reminderRL.Limit)
			r.Use(authMw)
			if cfg.RequestTimeout > 0 {
				r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
			}

			r.Get("/reminders", reminderH.All)
			r.Get("/reminders/email-check", reminderH.EmailCheck)
			r.Get("/reminders/deadlines", reminderH.Deadlines)
		})
	})

	return r
}
