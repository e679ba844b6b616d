package backend

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"
)

const defaultProbeTimeout = 5 * time.Second

// Catalog detects which backends are installed or reachable.
type Catalog struct {
	registry     *Registry
	probeTimeout time.Duration
}

// NewCatalog creates a catalog over the registered backends.
func NewCatalog(registry *Registry) *Catalog {
	return &Catalog{
		registry:     registry,
		probeTimeout: defaultProbeTimeout,
	}
}

// Registry returns the underlying backend registry.
func (c *Catalog) Registry() *Registry {
	return c.registry
}

// AvailableKinds returns the kinds whose runtime dependency is present.
// A missing dependency removes the kind from the result; it is never an error.
func (c *Catalog) AvailableKinds(ctx context.Context) []Kind {
	var kinds []Kind
	for _, k := range c.registry.Kinds() {
		if c.IsAvailable(ctx, k) {
			kinds = append(kinds, k)
		}
	}

	return kinds
}

// IsAvailable probes a single kind.
func (c *Catalog) IsAvailable(ctx context.Context, kind Kind) bool {
	b, ok := c.registry.Get(kind)
	if !ok {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	if err := b.Probe(ctx); err != nil {
		slog.Debug("Backend not available", "kind", kind, "error", err)
		return false
	}

	return true
}

// LocalServerModels returns the models installed on the local server.
// Communication failures are logged and yield an empty slice.
func (c *Catalog) LocalServerModels(ctx context.Context) []string {
	ls, ok := c.registry.GetLocalServer(KindLocalServer)
	if !ok {
		return []string{}
	}

	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	models, err := ls.ListModels(ctx)
	if err != nil {
		slog.Warn("Failed to list local server models", "error", err)
		return []string{}
	}

	return models
}

// HasLocalServerModel reports whether the named model is installed.
func (c *Catalog) HasLocalServerModel(ctx context.Context, name string) bool {
	return MatchModel(c.LocalServerModels(ctx), name)
}

// MatchModel reports whether name is in installed. An untagged name also
// matches its ":latest" tag.
func MatchModel(installed []string, name string) bool {
	if name == "" {
		return false
	}
	if slices.Contains(installed, name) {
		return true
	}
	if !strings.Contains(name, ":") {
		return slices.Contains(installed, name+":latest")
	}

	return false
}
