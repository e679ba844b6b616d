package service

import (
	"context"
	"slices"

	"github.com/ekisa-team/fairjudge/internal/backend"
	"github.com/ekisa-team/fairjudge/internal/persona"
)

// StatusReport describes backend availability and the current selection.
// CurrentBackend is nil until a backend has been selected.
type StatusReport struct {
	Status                string   `json:"status"`
	CurrentBackend        *string  `json:"current_backend"`
	CurrentModel          string   `json:"current_model"`
	AvailableBackends     []string `json:"available_backends"`
	AvailableLocalModels  []string `json:"available_local_models"`
	SuggestedModels       []string `json:"suggested_models"`
	Agents                []string `json:"agents"`
	LocalBackendReachable bool     `json:"local_backend_reachable"`
	Switching             bool     `json:"switching"`
	ModelLoaded           bool     `json:"model_loaded"`
}

// Status reports on the backends managed by a backend.Manager.
type Status struct {
	manager   *backend.Manager
	suggested func() []string
}

// NewStatus creates a Status service. suggested returns the models offered
// to users for the local server; it is read on every call.
func NewStatus(manager *backend.Manager, suggested func() []string) *Status {
	if suggested == nil {
		suggested = func() []string { return nil }
	}
	return &Status{manager: manager, suggested: suggested}
}

// Status probes the backends and returns a report. It never fails; probe
// failures show up as missing backends.
func (s *Status) Status(ctx context.Context) StatusReport {
	catalog := s.manager.Catalog()
	st := s.manager.State()

	available := catalog.AvailableKinds(ctx)
	names := make([]string, 0, len(available))
	for _, k := range available {
		names = append(names, k.String())
	}

	reachable := slices.Contains(available, backend.KindLocalServer)
	models := []string{}
	if reachable {
		models = catalog.LocalServerModels(ctx)
	}

	var current *string
	if st.Kind != backend.KindNone {
		name := st.Kind.String()
		current = &name
	}

	suggested := s.suggested()
	if suggested == nil {
		suggested = []string{}
	}

	return StatusReport{
		Status:                "ok",
		CurrentBackend:        current,
		CurrentModel:          st.Model,
		AvailableBackends:     names,
		AvailableLocalModels:  models,
		SuggestedModels:       suggested,
		Agents:                persona.Names(),
		LocalBackendReachable: reachable,
		Switching:             st.Switching,
		ModelLoaded:           st.Loaded,
	}
}
