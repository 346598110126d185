package http

import (
	"github.com/shukatsu-reminders/internal/application/reminder"
	jwtinfra "github.com/shukatsu-reminders/internal/infrastructure/jwt"
	"github.com/shukatsu-reminders/internal/metrics"
)

// Deps holds all dependencies for the router.
type Deps struct {
	Reminders reminder.Service
	// JWTProvider may be nil in development; requests then identify
	// themselves with the X-User-ID header.
	JWTProvider *jwtinfra.Provider
	// Metrics is nil when metrics are disabled.
	Metrics *metrics.Manager
}
