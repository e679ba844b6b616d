// Package service implements the operations exposed by the transports.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ekisa-team/fairjudge/internal/backend"
	"github.com/ekisa-team/fairjudge/internal/metrics"
	"github.com/ekisa-team/fairjudge/internal/persona"
)

// Generator is the part of backend.Manager used by Judge.
type Generator interface {
	Switch(ctx context.Context, kind backend.Kind, model string) error
	EnsureActive(ctx context.Context) (backend.State, error)
	Generate(ctx context.Context, p persona.Persona, text, model string) (backend.AgentResult, error)
	State() backend.State
	Concurrency() int
}

// JudgeRequest is a request to judge one article.
type JudgeRequest struct {
	// Backend switches the active backend before judging when set.
	Backend *backend.Kind

	Article string
	Model   string
}

// JudgeResult holds one result per persona.
type JudgeResult struct {
	Results       map[persona.Persona]backend.AgentResult `json:"results"`
	RequestID     string                                  `json:"request_id"`
	Backend       backend.Kind                            `json:"backend"`
	Model         string                                  `json:"model_name"`
	ExecutionTime time.Duration                           `json:"execution_time_ns"`
}

// Judge runs every persona against an article.
type Judge struct {
	manager Generator
}

// NewJudge creates a new Judge service.
func NewJudge(manager Generator) *Judge {
	return &Judge{manager: manager}
}

// Judge fans the article out to all personas and collects their results.
// Per-persona generation failures are reported as degraded results; only
// request-level failures are returned as errors.
func (j *Judge) Judge(ctx context.Context, req JudgeRequest) (*JudgeResult, error) {
	if strings.TrimSpace(req.Article) == "" {
		return nil, ErrEmptyArticle
	}

	requestID := uuid.NewString()
	log := slog.With("request_id", requestID)

	if req.Backend != nil {
		if err := j.manager.Switch(ctx, *req.Backend, req.Model); err != nil {
			metrics.JudgeRequests.WithLabelValues(metrics.OutcomeFailed).Inc()
			return nil, &SwitchError{Kind: *req.Backend, Err: err}
		}
	}

	st, err := j.manager.EnsureActive(ctx)
	if err != nil {
		metrics.JudgeRequests.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, err
	}

	personas := persona.All()
	results := make([]backend.AgentResult, len(personas))

	log.Info("Judging article", "backend", st.Kind, "model", st.Model, "article_len", len(req.Article))
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.manager.Concurrency())

	for i, p := range personas {
		g.Go(func() error {
			res, err := j.manager.Generate(gctx, p, req.Article, req.Model)
			if errors.Is(err, backend.ErrBackendBusy) {
				res, err = backend.DegradedResult(st.Kind, p, err), nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}

			results[i] = res
			return nil
		})
	}

	waitErr := g.Wait()
	elapsed := time.Since(start)

	if err := ctx.Err(); err != nil {
		metrics.JudgeRequests.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, err
	}
	if waitErr != nil {
		metrics.JudgeRequests.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, waitErr
	}

	final := j.manager.State()
	out := &JudgeResult{
		Results:       make(map[persona.Persona]backend.AgentResult, len(personas)),
		RequestID:     requestID,
		Backend:       final.Kind,
		Model:         final.ModelFor(req.Model),
		ExecutionTime: elapsed,
	}

	outcome := metrics.OutcomeOK
	for i, p := range personas {
		res := results[i]
		out.Results[p] = res

		switch {
		case res.Degraded:
			outcome = metrics.OutcomeDegraded
			metrics.PersonaResults.WithLabelValues(string(p), metrics.OutcomeDegraded).Inc()
		case !res.ScoreExtracted:
			metrics.ScoreFallbacks.WithLabelValues(string(p)).Inc()
			metrics.PersonaResults.WithLabelValues(string(p), metrics.OutcomeOK).Inc()
		default:
			metrics.PersonaResults.WithLabelValues(string(p), metrics.OutcomeOK).Inc()
		}
	}

	metrics.JudgeRequests.WithLabelValues(outcome).Inc()
	metrics.JudgeDuration.WithLabelValues(final.Kind.String()).Observe(elapsed.Seconds())

	log.Info("Article judged",
		"backend", final.Kind,
		"model", out.Model,
		"outcome", outcome,
		"elapsed", elapsed,
	)

	return out, nil
}
