package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ekisa-team/fairjudge/internal/backend"
	grpcserver "github.com/ekisa-team/fairjudge/internal/server/grpc"
	httpserver "github.com/ekisa-team/fairjudge/internal/server/http"
	"github.com/ekisa-team/fairjudge/internal/service"
)

var (
	flagHTTPPort int
	flagGRPCPort int
	flagBackend  string
	flagModel    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the judge API over HTTP and gRPC health",
	Long: `Serve starts the HTTP API under /api/v1, Prometheus metrics under /metrics
and the standard gRPC health service. The config file is reloaded when it
changes.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cmd, true)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				slog.Error("Failed to shut down backends", "error", err)
			}
		}()

		cfg := a.config.Snapshot()
		httpPort, grpcPort := cfg.Server.HTTPPort, cfg.Server.GRPCPort
		if cmd.Flags().Changed("http-port") {
			httpPort = flagHTTPPort
		}
		if cmd.Flags().Changed("grpc-port") {
			grpcPort = flagGRPCPort
		}

		if flagBackend != "" {
			if err := preselect(ctx, a.manager, flagBackend, flagModel); err != nil {
				return err
			}
		}

		httpSrv := httpserver.NewServer(cfg.Server.Host, httpPort, version, httpserver.Services{
			Status:   a.status,
			Switcher: a.manager,
			Judge:    a.judge,
			Research: service.NewResearch(nil),
		})
		grpcSrv := grpcserver.NewServer(cfg.Server.Host, grpcPort, a.manager)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return httpSrv.ListenAndServe(gctx) })
		g.Go(func() error { return grpcSrv.ListenAndServe(gctx) })

		return g.Wait()
	},
}

// preselect switches to the named backend before serving.
func preselect(ctx context.Context, m *backend.Manager, name, model string) error {
	kind, err := backend.ParseKind(name)
	if err != nil {
		return err
	}

	return m.Switch(ctx, kind, model)
}

func init() {
	serveCmd.Flags().IntVar(&flagHTTPPort, "http-port", 0, "HTTP port to listen on (overrides config)")
	serveCmd.Flags().IntVar(&flagGRPCPort, "grpc-port", 0, "gRPC port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&flagBackend, "backend", "", "backend to select at startup (local-server, in-process)")
	serveCmd.Flags().StringVar(&flagModel, "model", "", "model to select at startup")

	rootCmd.AddCommand(serveCmd)
}
