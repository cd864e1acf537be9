// v0
// internal/api/server.go
package api

import (
	"context"
	"log/slog"
	"net/http"

	"nrgchamp/noc-dashboard/internal/config"
)

type Server struct {
	HTTP *http.Server
	Log  *slog.Logger
}

func NewServer(cfg config.Config, log *slog.Logger, handler http.Handler) *Server {
	hs := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTPReadTimeout,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       2 * cfg.HTTPWriteTimeout,
	}
	return &Server{HTTP: hs, Log: log}
}

func (s *Server) Start() error {
	s.Log.Info("http_server_listen", slog.String("address", s.HTTP.Addr))
	return s.HTTP.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.Log.Info("http_server_stopping")
	return s.HTTP.Shutdown(ctx)
}
