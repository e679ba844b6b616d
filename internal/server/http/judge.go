package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/fairjudge/internal/backend"
	"github.com/ekisa-team/fairjudge/internal/persona"
	"github.com/ekisa-team/fairjudge/internal/service"
)

type (
	JudgeRequestDTO struct {
		Article   string `json:"article" minLength:"1" doc:"News article text"`
		Backend   string `json:"backend,omitempty" doc:"Backend to switch to before judging (local-server, in-process)"`
		ModelName string `json:"model_name,omitempty" doc:"Model to use"`
	}

	JudgeMetaDTO struct {
		ExecutionTime string `json:"execution_time" example:"1.23s"`
		Backend       string `json:"backend"`
		ModelName     string `json:"model_name"`
		RequestID     string `json:"request_id"`
	}

	JudgeResponseDTO struct {
		Results map[string]backend.AgentResult `json:"results"`
		Meta    JudgeMetaDTO                   `json:"meta"`
	}
)

type (
	JudgeInput struct {
		Body JudgeRequestDTO
	}

	JudgeOutput struct {
		Body JudgeResponseDTO
	}
)

// Judger runs the bias judge pipeline.
type Judger interface {
	Judge(ctx context.Context, req service.JudgeRequest) (*service.JudgeResult, error)
}

// JudgeHandler handles HTTP requests for article judgments.
type JudgeHandler struct {
	service Judger
}

// NewJudgeHandler creates a new JudgeHandler instance.
func NewJudgeHandler(api huma.API, service Judger) *JudgeHandler {
	h := &JudgeHandler{service: service}

	huma.Register(api, huma.Operation{
		OperationID:   "judge",
		Method:        http.MethodPost,
		Path:          "/judge",
		Summary:       "Judge the bias of a news article from three viewpoints",
		Tags:          []string{"judge"},
		DefaultStatus: http.StatusOK,
	}, h.handleJudge)

	return h
}

// handleJudge handles the judge operation.
func (h *JudgeHandler) handleJudge(ctx context.Context, input *JudgeInput) (*JudgeOutput, error) {
	req := service.JudgeRequest{
		Article: input.Body.Article,
		Model:   input.Body.ModelName,
	}

	if input.Body.Backend != "" {
		kind, err := backend.ParseKind(input.Body.Backend)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid backend", err)
		}
		req.Backend = &kind
	}

	res, err := h.service.Judge(ctx, req)
	if err != nil {
		var switchErr *service.SwitchError
		switch {
		case errors.Is(err, service.ErrEmptyArticle):
			return nil, huma.Error400BadRequest("article is empty", err)
		case errors.As(err, &switchErr):
			return nil, huma.Error400BadRequest(fmt.Sprintf("backend switch failed: %v", switchErr.Err))
		case errors.Is(err, backend.ErrNoBackendAvailable):
			return nil, huma.Error500InternalServerError("no backend available", err)
		default:
			return nil, huma.Error500InternalServerError("failed to judge article", err)
		}
	}

	results := make(map[string]backend.AgentResult, len(res.Results))
	for _, p := range persona.All() {
		results[string(p)] = res.Results[p]
	}

	return &JudgeOutput{
		Body: JudgeResponseDTO{
			Results: results,
			Meta: JudgeMetaDTO{
				ExecutionTime: fmt.Sprintf("%.2fs", res.ExecutionTime.Seconds()),
				Backend:       res.Backend.String(),
				ModelName:     res.Model,
				RequestID:     res.RequestID,
			},
		},
	}, nil
}
