// Package http exposes fairjudge over a JSON HTTP API.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BasePath prefixes every API operation.
const BasePath = "/api/v1"

// Services groups the services served over HTTP.
type Services struct {
	Status   StatusReporter
	Switcher Switcher
	Judge    Judger
	Research ResearchRunner
}

// Server is the HTTP API server.
type Server struct {
	srv *http.Server
	api huma.API
}

// NewServer creates a server listening on host:port.
func NewServer(host string, port int, version string, svc Services) *Server {
	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("fairjudge API", version))

	Register(huma.NewGroup(api, BasePath), svc)
	mux.Handle("GET /metrics", promhttp.Handler())

	return &Server{
		api: api,
		srv: &http.Server{
			Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Register registers every operation on api.
func Register(api huma.API, svc Services) {
	NewBackendHandler(api, svc.Status, svc.Switcher)
	NewJudgeHandler(api, svc.Judge)
	NewResearchHandler(api, svc.Research)
}

// API returns the underlying huma API.
func (s *Server) API() huma.API {
	return s.api
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	slog.Info("HTTP server stopped")
	return nil
}
