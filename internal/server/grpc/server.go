// Package grpc serves the standard gRPC health protocol for fairjudge.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/ekisa-team/fairjudge/internal/backend"
)

// ServiceName is the health service name tracking judge readiness.
const ServiceName = "fairjudge.Judge"

// StateNotifier publishes backend state changes.
type StateNotifier interface {
	OnChange(fn func(backend.State))
	State() backend.State
}

// Server is the gRPC server.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	addr   string
}

// NewServer creates a server that reports ServiceName as SERVING while a
// backend with a usable model is active.
func NewServer(host string, port int, notifier StateNotifier) *Server {
	s := &Server{
		srv:    grpc.NewServer(),
		health: health.NewServer(),
		addr:   net.JoinHostPort(host, strconv.Itoa(port)),
	}

	healthpb.RegisterHealthServer(s.srv, s.health)
	reflection.Register(s.srv)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.update(notifier.State())
	notifier.OnChange(s.update)

	return s
}

// Health returns the health server.
func (s *Server) Health() *health.Server {
	return s.health
}

func (s *Server) update(st backend.State) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if st.Usable() && !st.Switching {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
}

// ListenAndServe serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("gRPC server listening", "addr", s.addr)
		errCh <- s.srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.health.Shutdown()
	s.srv.GracefulStop()

	slog.Info("gRPC server stopped")
	return nil
}
