package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ekisa-team/fairjudge/internal/metrics"
	"github.com/ekisa-team/fairjudge/internal/persona"
	"github.com/ekisa-team/fairjudge/internal/score"
)

// DefaultCallTimeout bounds a single inference call.
const DefaultCallTimeout = 2 * time.Minute

// AgentResult is the outcome of one persona.
type AgentResult struct {
	Summary   string  `json:"summary"`
	BiasScore float64 `json:"bias_score"`

	// Degraded is set when generation failed and Summary holds the error text.
	Degraded bool `json:"degraded"`

	// ScoreExtracted is false when BiasScore is the neutral fallback.
	ScoreExtracted bool `json:"score_extracted"`
}

// State is a consistent snapshot of the backend selection.
type State struct {
	Kind      Kind   `json:"kind"`
	Model     string `json:"model"`
	Loaded    bool   `json:"loaded"`
	Switching bool   `json:"switching"`
}

// Usable reports whether generation can be served from this state.
func (s State) Usable() bool {
	return s.Kind != KindNone && s.Loaded
}

// ModelFor returns the model that serves a call requesting model. Only the
// local server honours per-call overrides; a loaded in-process model always
// serves its own calls.
func (s State) ModelFor(model string) string {
	if model != "" && s.Kind == KindLocalServer {
		return model
	}
	return s.Model
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithCallTimeout sets a function returning the per-call timeout. It is read
// on every call so configuration reloads take effect immediately.
func WithCallTimeout(fn func() time.Duration) ManagerOption {
	return func(m *Manager) {
		m.callTimeout = fn
	}
}

// WithParameters sets inference parameters passed to every call.
func WithParameters(p map[string]any) ManagerOption {
	return func(m *Manager) {
		m.parameters = p
	}
}

// Manager owns the active backend selection. It is the only component that
// mutates it.
type Manager struct {
	catalog     *Catalog
	handle      Handle
	callTimeout func() time.Duration
	parameters  map[string]any
	sem         chan struct{}
	active      Kind
	model       string
	observers   []func(State)
	switching   atomic.Bool
	mu          sync.RWMutex
	obsMu       sync.Mutex
}

// NewManager creates a Manager with no backend selected.
func NewManager(catalog *Catalog, opts ...ManagerOption) *Manager {
	m := &Manager{
		catalog:     catalog,
		sem:         make(chan struct{}, 1),
		callTimeout: func() time.Duration { return DefaultCallTimeout },
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Catalog returns the backend catalog.
func (m *Manager) Catalog() *Catalog {
	return m.catalog
}

// OnChange registers fn to be called after every state change.
func (m *Manager) OnChange(fn func(State)) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()

	m.observers = append(m.observers, fn)
}

// State returns a snapshot of the current selection.
func (m *Manager) State() State {
	st, _ := m.snapshot()
	return st
}

// Concurrency returns how many requests the active backend serves in parallel.
func (m *Manager) Concurrency() int {
	st := m.State()
	if b, ok := m.catalog.Registry().Get(st.Kind); ok && b.Concurrency() > 0 {
		return b.Concurrency()
	}
	return 1
}

func (m *Manager) snapshot() (State, Handle) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return State{
		Kind:      m.active,
		Model:     m.model,
		Loaded:    m.handle != nil,
		Switching: m.switching.Load(),
	}, m.handle
}

func (m *Manager) acquire(ctx context.Context) error {
	select {
	case m.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) release() {
	<-m.sem
}

// Switch selects kind as the active backend. An empty model selects the
// backend's default. A failed switch leaves the active kind unchanged.
func (m *Manager) Switch(ctx context.Context, kind Kind, model string) error {
	if err := m.acquire(ctx); err != nil {
		return err
	}
	defer m.release()

	err := m.switchLocked(ctx, kind, model)
	if err != nil {
		metrics.BackendSwitches.WithLabelValues(kind.String(), metrics.OutcomeFailed).Inc()
		return err
	}

	metrics.BackendSwitches.WithLabelValues(kind.String(), metrics.OutcomeOK).Inc()
	return nil
}

// switchLocked must be called with the switch semaphore held.
func (m *Manager) switchLocked(ctx context.Context, kind Kind, model string) error {
	b, ok := m.catalog.Registry().Get(kind)
	if !ok {
		return fmt.Errorf("%w: %s is not registered", ErrBackendUnavailable, kind)
	}

	if model == "" {
		model = b.DefaultModel()
	}

	if !m.catalog.IsAvailable(ctx, kind) {
		return fmt.Errorf("%w: %s", ErrBackendUnavailable, kind)
	}

	m.switching.Store(true)
	m.notify()
	defer func() {
		m.switching.Store(false)
		m.notify()
	}()

	if b.Resident() {
		// Only one resident model is kept; drop the current one before loading.
		m.dropResident()
	}

	slog.Info("Switching backend", "kind", kind, "model", model)
	start := time.Now()

	h, err := b.Load(ctx, model)
	if err != nil {
		slog.Error("Failed to switch backend", "kind", kind, "model", model, "error", err)
		return fmt.Errorf("switch to %s: %w", kind, err)
	}

	m.mu.Lock()
	prev := m.handle
	m.active = kind
	m.model = h.Model()
	m.handle = h
	m.mu.Unlock()

	if prev != nil && prev != h {
		if err := prev.Close(); err != nil {
			slog.Warn("Failed to release previous backend", "model", prev.Model(), "error", err)
		}
	}

	for _, k := range Kinds() {
		v := 0.0
		if k == kind {
			v = 1
		}
		metrics.ActiveBackend.WithLabelValues(k.String()).Set(v)
	}

	slog.Info("Backend switched", "kind", kind, "model", h.Model(), "elapsed", time.Since(start))
	return nil
}

// dropResident releases the current handle if it owns a loaded model. The
// active kind is left unchanged.
func (m *Manager) dropResident() {
	m.mu.Lock()
	h := m.handle
	if h == nil || !h.Resident() {
		m.mu.Unlock()
		return
	}
	m.handle = nil
	m.mu.Unlock()

	if err := h.Close(); err != nil {
		slog.Warn("Failed to release resident model", "model", h.Model(), "error", err)
	}
}

// EnsureActive waits for an in-flight switch and selects a default backend
// when none is active.
func (m *Manager) EnsureActive(ctx context.Context) (State, error) {
	if st, _ := m.snapshot(); st.Kind != KindNone && !st.Switching {
		return st, nil
	}

	if err := m.acquire(ctx); err != nil {
		return State{}, err
	}
	defer m.release()

	if st, _ := m.snapshot(); st.Kind != KindNone {
		return st, nil
	}

	if err := m.selectDefaultLocked(ctx); err != nil {
		return State{}, err
	}

	return m.State(), nil
}

// selectDefaultLocked tries every registered kind with its default model.
func (m *Manager) selectDefaultLocked(ctx context.Context) error {
	var errs []error
	for _, k := range m.catalog.Registry().Kinds() {
		err := m.switchLocked(ctx, k, "")
		if err == nil {
			metrics.BackendSwitches.WithLabelValues(k.String(), metrics.OutcomeOK).Inc()
			return nil
		}

		metrics.BackendSwitches.WithLabelValues(k.String(), metrics.OutcomeFailed).Inc()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		errs = append(errs, err)
	}

	return fmt.Errorf("%w: %w", ErrNoBackendAvailable, errors.Join(errs...))
}

// Generate produces a persona's summary and bias score with the active
// backend, selecting a default backend first if none is active. Inference
// failures are returned as a degraded AgentResult, not as an error; the
// error return is reserved for selection failures.
func (m *Manager) Generate(ctx context.Context, p persona.Persona, text, model string) (AgentResult, error) {
	prompt, err := persona.Compose(p, text)
	if err != nil {
		return AgentResult{}, err
	}

	st, h := m.snapshot()
	if st.Switching && st.Kind != KindNone {
		return AgentResult{}, ErrBackendBusy
	}

	if st.Kind == KindNone {
		if _, err := m.EnsureActive(ctx); err != nil {
			return AgentResult{}, err
		}
		st, h = m.snapshot()
	}

	if h == nil {
		return DegradedResult(st.Kind, p, ErrModelNotLoaded), nil
	}

	summary, err := m.infer(ctx, h, model, prompt)
	if err != nil {
		return DegradedResult(st.Kind, p, m.releasedErr(ctx, h, err)), nil
	}

	scorePrompt, err := persona.ScorePrompt(p, prompt)
	if err != nil {
		return AgentResult{}, err
	}

	scoreText, err := m.infer(ctx, h, model, scorePrompt)
	if err != nil {
		return DegradedResult(st.Kind, p, m.releasedErr(ctx, h, err)), nil
	}

	v, ok := score.ExtractOK(scoreText)
	if !ok {
		slog.Debug("Bias score not found in response", "persona", p, "response", scoreText)
	}

	return AgentResult{
		Summary:        summary,
		BiasScore:      v,
		ScoreExtracted: ok,
	}, nil
}

func (m *Manager) infer(ctx context.Context, h Handle, model, prompt string) (string, error) {
	timeout := m.callTimeout()
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := h.Infer(ctx, &Request{
		Model:      model,
		Prompt:     prompt,
		Parameters: m.parameters,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("timed out after %s: %w", timeout, err)
		}
		return "", err
	}

	return strings.TrimSpace(resp.Text), nil
}

// releasedErr marks err as caused by a switch when h stopped being the active
// handle while the call was running.
func (m *Manager) releasedErr(ctx context.Context, h Handle, err error) error {
	if ctx.Err() != nil {
		return err
	}
	if _, current := m.snapshot(); current == h {
		return err
	}
	return fmt.Errorf("%w: %w", ErrBackendBusy, err)
}

// DegradedResult converts a generation failure into a labeled result.
func DegradedResult(kind Kind, p persona.Persona, err error) AgentResult {
	slog.Warn("Persona generation failed", "kind", kind, "persona", p, "error", err)

	return AgentResult{
		Summary:   fmt.Sprintf("%s generation failed (%s): %v", kind, p, err),
		BiasScore: score.Fallback,
		Degraded:  true,
	}
}

func (m *Manager) notify() {
	st := m.State()

	m.obsMu.Lock()
	observers := make([]func(State), len(m.observers))
	copy(observers, m.observers)
	m.obsMu.Unlock()

	for _, fn := range observers {
		fn(st)
	}
}

// Close releases any loaded model. The Manager must not be used afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	h := m.handle
	m.handle = nil
	m.mu.Unlock()

	if h == nil {
		return nil
	}

	return h.Close()
}
