// Package llama implements the in-process backend: a GGUF model loaded into a
// dedicated llama.cpp server process owned by fairjudge.
package llama

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ekisa-team/fairjudge/internal/backend"
	"github.com/ekisa-team/fairjudge/internal/config"
	"github.com/ekisa-team/fairjudge/internal/config/source"
	"github.com/ekisa-team/fairjudge/internal/model"
)

// BackendName names the llama.cpp server process.
const BackendName = "llama-server"

const probeTimeout = 10 * time.Second

// ErrNoModelFile is returned when a downloaded model contains no GGUF file.
var ErrNoModelFile = errors.New("no GGUF model file found")

// Launcher starts and stops server processes.
type Launcher interface {
	StartServer(ctx context.Context, cfg backend.ServerConfig) error
	StopServer(name string, port int) error
}

// Fetcher resolves a model name into a file or directory on disk.
type Fetcher interface {
	Fetch(ctx context.Context, name string, models map[string]config.ModelConfig, modelsDir string) (string, error)
}

// Option configures a Backend.
type Option func(*Backend)

// WithLauncher replaces the process launcher.
func WithLauncher(l Launcher) Option {
	return func(b *Backend) {
		b.launcher = l
	}
}

// WithFetcher replaces the model fetcher.
func WithFetcher(f Fetcher) Option {
	return func(b *Backend) {
		b.fetcher = f
	}
}

// WithExecutor replaces the executor used to probe the server binary.
func WithExecutor(e *backend.Executor) Option {
	return func(b *Backend) {
		b.executor = e
	}
}

// Backend implements backend.Backend for llama.cpp.
type Backend struct {
	launcher  Launcher
	fetcher   Fetcher
	executor  *backend.Executor
	modelsDir string
	cfg       config.InProcessConfig
}

// NewBackend creates a new Backend instance.
func NewBackend(cfg config.InProcessConfig, modelsDir string, opts ...Option) *Backend {
	b := &Backend{
		cfg:       cfg,
		modelsDir: modelsDir,
		launcher:  backend.NewServerManager(),
		fetcher:   source.NewFetcher(nil),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Kind implements backend.Backend.
func (b *Backend) Kind() backend.Kind {
	return backend.KindInProcess
}

// DefaultModel implements backend.Backend.
func (b *Backend) DefaultModel() string {
	return b.cfg.DefaultModel
}

// Concurrency implements backend.Backend.
func (b *Backend) Concurrency() int {
	return max(b.cfg.Parallel, 1)
}

// Resident implements backend.Backend.
func (b *Backend) Resident() bool {
	return true
}

// Probe runs the server binary with --version.
func (b *Backend) Probe(ctx context.Context) error {
	executor := b.executor
	if executor == nil {
		var err error
		executor, err = backend.NewExecutor(b.cfg.BinPath, probeTimeout)
		if err != nil {
			return err
		}
	}

	_, stderr, err := executor.Execute(ctx, []string{"--version"}, nil)
	if err != nil {
		return fmt.Errorf("%s --version: %w: %s", b.cfg.BinPath, err, strings.TrimSpace(string(stderr)))
	}

	return nil
}

// Load fetches the model, starts a llama-server process serving it, and
// waits until the server is healthy.
func (b *Backend) Load(ctx context.Context, name string) (backend.Handle, error) {
	path, err := b.fetcher.Fetch(ctx, name, b.cfg.Models, b.modelsDir)
	if err != nil {
		if errors.Is(err, source.ErrUnknownModel) {
			return nil, &backend.ModelNotFoundError{
				Kind:      backend.KindInProcess,
				Model:     name,
				Installed: b.configuredModels(),
			}
		}
		return nil, fmt.Errorf("fetch model %s: %w", name, err)
	}

	modelPath, err := b.ResolveModelPath(path)
	if err != nil {
		return nil, err
	}

	instance := model.NewInstance(name, modelPath)
	instance.SetStatus(model.StatusLoading)

	if err := b.launcher.StartServer(ctx, backend.ServerConfig{
		Name:         BackendName,
		BinPath:      b.cfg.BinPath,
		Host:         b.cfg.Host,
		Port:         b.cfg.Port,
		Args:         b.buildArgs(modelPath),
		HealthPath:   "/health",
		ReadyTimeout: b.cfg.ReadyTimeout,
	}); err != nil {
		instance.Fail(err)
		return nil, fmt.Errorf("load model %s: %w", name, err)
	}

	instance.SetStatus(model.StatusLoaded)

	return newHandle(b, instance), nil
}

// ResolveModelPath returns the GGUF file to load. path may be a GGUF file
// or a directory containing one; split models resolve to their first part.
func (b *Backend) ResolveModelPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("resolve model path: %w", err)
	}

	if !info.IsDir() {
		return path, nil
	}

	var candidates []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		base := strings.ToLower(d.Name())
		if strings.HasSuffix(base, ".gguf") && !strings.HasPrefix(base, "mmproj") {
			candidates = append(candidates, p)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("resolve model path: %w", err)
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoModelFile, path)
	}

	slices.Sort(candidates)
	return candidates[0], nil
}

// buildArgs builds llama-server command-line arguments.
func (b *Backend) buildArgs(modelPath string) []string {
	args := []string{
		"--model", modelPath,
		"--host", b.host(),
		"--port", fmt.Sprintf("%d", b.cfg.Port),
		"--parallel", fmt.Sprintf("%d", b.Concurrency()),
	}

	if b.cfg.ContextSize > 0 {
		args = append(args, "--ctx-size", fmt.Sprintf("%d", b.cfg.ContextSize))
	}

	if b.cfg.GPULayers > 0 {
		args = append(args, "--n-gpu-layers", fmt.Sprintf("%d", b.cfg.GPULayers))
	}

	return args
}

func (b *Backend) host() string {
	if b.cfg.Host == "" {
		return "127.0.0.1"
	}
	return b.cfg.Host
}

func (b *Backend) configuredModels() []string {
	names := make([]string, 0, len(b.cfg.Models))
	for name := range b.cfg.Models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
