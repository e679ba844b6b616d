package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/fairjudge/internal/backend"
	"github.com/ekisa-team/fairjudge/internal/service"
)

type (
	SwitchBackendRequestDTO struct {
		Backend   string `json:"backend" doc:"Backend to activate (local-server, in-process)"`
		ModelName string `json:"model_name,omitempty" doc:"Model to use; the backend default when empty"`
	}

	SwitchBackendResponseDTO struct {
		Success        bool   `json:"success"`
		CurrentBackend string `json:"current_backend"`
		ModelName      string `json:"model_name"`
	}
)

type (
	StatusOutput struct {
		Body service.StatusReport
	}

	SwitchBackendInput struct {
		Body SwitchBackendRequestDTO
	}

	SwitchBackendOutput struct {
		Body SwitchBackendResponseDTO
	}
)

// StatusReporter reports backend availability.
type StatusReporter interface {
	Status(ctx context.Context) service.StatusReport
}

// Switcher changes the active backend.
type Switcher interface {
	Switch(ctx context.Context, kind backend.Kind, model string) error
	State() backend.State
}

// BackendHandler handles HTTP requests for backend status and selection.
type BackendHandler struct {
	status   StatusReporter
	switcher Switcher
}

// NewBackendHandler creates a new BackendHandler instance.
func NewBackendHandler(api huma.API, status StatusReporter, switcher Switcher) *BackendHandler {
	h := &BackendHandler{status: status, switcher: switcher}

	huma.Register(api, huma.Operation{
		OperationID: "status",
		Method:      http.MethodGet,
		Path:        "/status",
		Summary:     "Report backend availability and the current selection",
		Tags:        []string{"backend"},
	}, h.handleStatus)

	huma.Register(api, huma.Operation{
		OperationID: "switch-backend",
		Method:      http.MethodPost,
		Path:        "/switch-backend",
		Summary:     "Switch the active backend",
		Tags:        []string{"backend"},
	}, h.handleSwitch)

	return h
}

// handleStatus handles the status operation.
func (h *BackendHandler) handleStatus(ctx context.Context, _ *struct{}) (*StatusOutput, error) {
	return &StatusOutput{Body: h.status.Status(ctx)}, nil
}

// handleSwitch handles the switch-backend operation.
func (h *BackendHandler) handleSwitch(ctx context.Context, input *SwitchBackendInput) (*SwitchBackendOutput, error) {
	kind, err := backend.ParseKind(input.Body.Backend)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid backend", err)
	}

	if err := h.switcher.Switch(ctx, kind, input.Body.ModelName); err != nil {
		return nil, huma.Error400BadRequest(fmt.Sprintf("backend switch failed: %v", err))
	}

	st := h.switcher.State()
	return &SwitchBackendOutput{
		Body: SwitchBackendResponseDTO{
			Success:        true,
			CurrentBackend: st.Kind.String(),
			ModelName:      st.Model,
		},
	}, nil
}
