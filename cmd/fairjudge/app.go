package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ekisa-team/fairjudge/internal/backend"
	"github.com/ekisa-team/fairjudge/internal/backend/llama"
	"github.com/ekisa-team/fairjudge/internal/backend/ollama"
	"github.com/ekisa-team/fairjudge/internal/config"
	"github.com/ekisa-team/fairjudge/internal/config/source"
	"github.com/ekisa-team/fairjudge/internal/env"
	"github.com/ekisa-team/fairjudge/internal/logger"
	"github.com/ekisa-team/fairjudge/internal/service"
	"github.com/ekisa-team/fairjudge/internal/xfs"
)

// app wires the services shared by every command.
type app struct {
	config  config.Provider
	watcher *config.Watcher
	servers *backend.ServerManager
	manager *backend.Manager
	judge   *service.Judge
	status  *service.Status
}

// newApp loads the configuration and builds the backends. When watch is set
// and a config file exists, the file is reloaded on change.
func newApp(ctx context.Context, cmd *cobra.Command, watch bool) (*app, error) {
	a := &app{servers: backend.NewServerManager()}

	path := flagConfigPath
	if !xfs.FileExists(xfs.ExpandTilde(path)) {
		if cmd.Flags().Changed("config") {
			return nil, fmt.Errorf("config file %s not found", path)
		}
		path = ""
	}
	path = xfs.ExpandTilde(path)

	switch {
	case path != "" && watch:
		w, err := config.NewWatcher(ctx, path, func(_ *config.Config, err error) {
			if err != nil {
				slog.Error("Keeping previous config", "error", err)
			}
		})
		if err != nil {
			return nil, err
		}
		a.watcher = w
		a.config = w
	default:
		cfg, err := config.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		a.config = config.NewStatic(cfg)
	}

	cfg := a.config.Snapshot()
	if cfg.Logging.ToFile {
		file := cfg.Logging.File
		if file == "" {
			file = filepath.Join("logs", "fairjudge.log")
		}
		slog.SetDefault(logger.New(env.FromEnv(), loggerOptions(cmd, file)...))
	}

	slog.Debug("Config loaded", "path", path, "version", cfg.Version)

	registry, err := backend.NewRegistry(
		ollama.NewBackend(cfg.Backends.LocalServer),
		llama.NewBackend(cfg.Backends.InProcess, cfg.Storage.ModelsDir,
			llama.WithLauncher(a.servers),
			llama.WithFetcher(source.NewFetcher(nil)),
		),
	)
	if err != nil {
		return nil, err
	}

	a.manager = backend.NewManager(backend.NewCatalog(registry),
		backend.WithCallTimeout(func() time.Duration {
			return a.config.Snapshot().Judge.CallTimeout
		}),
		backend.WithParameters(cfg.Judge.Parameters),
	)
	a.judge = service.NewJudge(a.manager)
	a.status = service.NewStatus(a.manager, func() []string {
		return a.config.Snapshot().Backends.LocalServer.SuggestedModels
	})

	return a, nil
}

// Close releases the loaded model and stops child servers.
func (a *app) Close() error {
	var errs []error
	if err := a.manager.Close(); err != nil {
		errs = append(errs, err)
	}
	a.servers.StopAll()

	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
