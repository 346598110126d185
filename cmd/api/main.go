package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shukatsu-reminders/internal/application/reminder"
	"github.com/shukatsu-reminders/internal/config"
	jwtinfra "github.com/shukatsu-reminders/internal/infrastructure/jwt"
	"github.com/shukatsu-reminders/internal/infrastructure/store"
	"github.com/shukatsu-reminders/internal/metrics"
	"github.com/shukatsu-reminders/internal/pkg/logging"
	transporthttp "github.com/shukatsu-reminders/internal/transport/http"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat))
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	if err := run(cfg); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	gateway, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	// JWT provider is required outside development.
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else if cfg.IsDevelopment() {
		slog.Warn("JWT provider not available, trusting X-User-ID header", "err", err)
	} else {
		return fmt.Errorf("jwt provider: %w", err)
	}

	messages, err := reminder.NewMessages(cfg.ReminderLocale)
	if err != nil {
		return fmt.Errorf("reminder messages: %w", err)
	}

	var m *metrics.Manager
	deps := reminder.ServiceDeps{
		Gateway:     gateway,
		Messages:    messages,
		Concurrency: cfg.SubQueryConcurrency,
	}
	if cfg.MetricsEnabled {
		m = metrics.NewManager(metrics.WithRuntimeCollectors(true))
		deps.Recorder = m
	}

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Reminders:   reminder.NewService(deps),
		JWTProvider: jwtProvider,
		Metrics:     m,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
