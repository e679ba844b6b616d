package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ekisa-team/fairjudge/internal/research"
)

// Research forwards research requests to an optional collaborator.
type Research struct {
	researcher research.Researcher
}

// NewResearch creates a Research service. researcher may be nil.
func NewResearch(researcher research.Researcher) *Research {
	return &Research{researcher: researcher}
}

// Available reports whether a researcher is configured.
func (r *Research) Available() bool {
	return r != nil && r.researcher != nil
}

// Run researches q.Topic.
func (r *Research) Run(ctx context.Context, q research.Query) (*research.Bundle, error) {
	if !r.Available() {
		return nil, ErrNoResearcher
	}

	q.Topic = strings.TrimSpace(q.Topic)
	if q.Topic == "" {
		return nil, fmt.Errorf("%w: empty topic", research.ErrInvalidQuery)
	}
	q = q.WithDefaults()

	start := time.Now()
	bundle, err := r.researcher.Research(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("research %q: %w", q.Topic, err)
	}

	slog.Info("Research completed", "topic", q.Topic, "sources", len(bundle.Sources), "elapsed", time.Since(start))
	return bundle, nil
}
