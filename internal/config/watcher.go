package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Provider returns the current configuration.
type Provider interface {
	Snapshot() *Config
}

// Static is a Provider that never changes.
type Static struct {
	cfg *Config
}

// NewStatic wraps cfg in a Provider.
func NewStatic(cfg *Config) *Static {
	return &Static{cfg: cfg}
}

// Snapshot implements Provider.
func (s *Static) Snapshot() *Config {
	return s.cfg
}

const debounce = 500 * time.Millisecond

// Watcher watches for configuration changes.
type Watcher struct {
	ctx      context.Context
	current  *Config
	onReload func(*Config, error)
	fsw      *fsnotify.Watcher
	done     chan struct{}
	path     string
	mu       sync.RWMutex
	reloads  atomic.Uint32
}

// NewWatcher loads the config at path and reloads it whenever the file is
// written. onReload may be nil.
func NewWatcher(ctx context.Context, path string, onReload func(*Config, error)) (*Watcher, error) {
	cfg, err := Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Editors often replace the file, so watch the directory.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	if onReload == nil {
		onReload = func(*Config, error) {}
	}

	w := &Watcher{
		ctx:      ctx,
		path:     filepath.Clean(path),
		onReload: onReload,
		current:  cfg,
		fsw:      fsw,
		done:     make(chan struct{}),
	}

	go w.watch()

	return w, nil
}

// watch watches for configuration changes.
func (w *Watcher) watch() {
	defer close(w.done)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != w.path {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, w.reload)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

			slog.Error("Config watcher error", "error", err)
		}
	}
}

// reload reloads the config file.
func (w *Watcher) reload() {
	count := w.reloads.Add(1)
	slog.Info("Reloading config file", "path", w.path, "count", count)

	cfg, err := Load(w.ctx, w.path)
	if err != nil {
		slog.Error("Failed to reload config", "error", err)
		w.onReload(nil, err)
		return
	}

	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	slog.Info("Config reloaded successfully", "count", count)
	w.onReload(cfg, nil)
}

// Snapshot returns the current config snapshot.
func (w *Watcher) Snapshot() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.current
}

// ReloadCount returns the number of times the config has been reloaded.
func (w *Watcher) ReloadCount() uint32 {
	return w.reloads.Load()
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
