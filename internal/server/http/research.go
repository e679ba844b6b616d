package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/fairjudge/internal/research"
)

type (
	ResearchInput struct {
		Body research.Query
	}

	ResearchOutput struct {
		Body *research.Bundle
	}
)

// ResearchRunner runs web research.
type ResearchRunner interface {
	Available() bool
	Run(ctx context.Context, q research.Query) (*research.Bundle, error)
}

// ResearchHandler handles HTTP requests for web research.
type ResearchHandler struct {
	service ResearchRunner
}

// NewResearchHandler creates a new ResearchHandler instance.
func NewResearchHandler(api huma.API, service ResearchRunner) *ResearchHandler {
	h := &ResearchHandler{service: service}

	huma.Register(api, huma.Operation{
		OperationID: "research",
		Method:      http.MethodPost,
		Path:        "/research",
		Summary:     "Gather web research on a topic",
		Tags:        []string{"research"},
	}, h.handleResearch)

	return h
}

// handleResearch handles the research operation.
func (h *ResearchHandler) handleResearch(ctx context.Context, input *ResearchInput) (*ResearchOutput, error) {
	if h.service == nil || !h.service.Available() {
		return nil, huma.NewError(http.StatusNotImplemented, "research is not configured")
	}

	bundle, err := h.service.Run(ctx, input.Body)
	if err != nil {
		if errors.Is(err, research.ErrInvalidQuery) {
			return nil, huma.Error400BadRequest("invalid research query", err)
		}
		return nil, huma.Error502BadGateway("research failed", err)
	}

	return &ResearchOutput{Body: bundle}, nil
}
