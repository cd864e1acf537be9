// v0
// internal/app/app.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"nrgchamp/noc-dashboard/internal/api"
	"nrgchamp/noc-dashboard/internal/auth"
	"nrgchamp/noc-dashboard/internal/config"
	"nrgchamp/noc-dashboard/internal/observability"
	"nrgchamp/noc-dashboard/internal/storage"
	"nrgchamp/noc-dashboard/internal/telemetry"
)

// Application wires configuration, the store, routing, and graceful
// shutdown for the NOC API.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB
	server *api.Server
	health *api.HealthState
}

// New builds a ready-to-run API from cfg using db as the store
// connection pool. The caller keeps ownership of db until Close.
func New(cfg config.Config, logger *slog.Logger, db *sql.DB) (*Application, error) {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		return nil, errors.New("listen address cannot be empty")
	}
	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL, nil)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	metrics := observability.NewMetrics()
	store := storage.New(db, metrics)
	health := api.NewHealthState(store)

	handlers := &api.Handlers{
		Log:       logger.With(slog.String("component", "http_api")),
		Verifier:  auth.NewVerifier(store, tokens),
		Telemetry: telemetry.NewResolver(store, logger.With(slog.String("component", "telemetry")), metrics, nil),
		Exporter:  telemetry.NewExporter(store),
		Metrics:   metrics,
	}
	router := api.NewRouter(logger, handlers, auth.NewAuthenticator(tokens), health, metrics)
	server := api.NewServer(cfg, logger, api.Wrap(logger, router, cfg.CORSAllowedOrigins))

	logger.Info("api_configured",
		slog.String("address", cfg.ListenAddress),
		slog.String("db_driver", cfg.Database.Driver),
		slog.Duration("token_ttl", cfg.TokenTTL),
		slog.String("cors_origins", strings.Join(cfg.CORSAllowedOrigins, ",")),
	)

	return &Application{cfg: cfg, logger: logger, db: db, server: server, health: health}, nil
}

// Handler exposes the fully wrapped HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.server.HTTP.Handler
}

// Run blocks until ctx is cancelled or the HTTP server fails, then
// shuts the server down within the configured timeout.
func (a *Application) Run(ctx context.Context) error {
	httpCh := make(chan error, 1)
	go func() {
		a.health.SetReady(true)
		httpCh <- a.server.Start()
	}()

	select {
	case err := <-httpCh:
		a.health.SetReady(false)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http_server_error", slog.Any("err", err))
			return err
		}
		a.logger.Info("server_closed")
		return nil
	case <-ctx.Done():
		a.logger.Info("shutdown_signal")
		a.health.SetReady(false)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()
	var shutdownErr error
	if err := a.server.Stop(shutdownCtx); err != nil {
		a.logger.Error("server_shutdown_failed", slog.Any("err", err))
		shutdownErr = fmt.Errorf("shutdown: %w", err)
	}
	if err := <-httpCh; err != nil && !errors.Is(err, http.ErrServerClosed) && shutdownErr == nil {
		shutdownErr = err
	}
	if shutdownErr == nil {
		a.logger.Info("shutdown_complete")
	}
	return shutdownErr
}

func (a *Application) shutdownTimeout() time.Duration {
	if a.cfg.ShutdownTimeout > 0 {
		return a.cfg.ShutdownTimeout
	}
	return 10 * time.Second
}

// Close releases the store connection pool.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
