package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"taskmanager/pkg/config"
)

type Server struct {
	srv *http.Server
}

// NewServer has no write timeout: subscription streams stay open for as
// long as the client listens.
func NewServer(cfg *config.AppConfig, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

func (s *Server) Addr() string {
	return s.srv.Addr
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	slog.Info("Server starting", "addr", s.srv.Addr)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// OnShutdown registers f to run as soon as Shutdown is called, before
// waiting for open connections. Used to end long-lived streams.
func (s *Server) OnShutdown(f func()) {
	s.srv.RegisterOnShutdown(f)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
