package backend

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Kind identifies which generation path answers requests.
type Kind string

const (
	// KindNone is the zero Kind; no backend has been selected yet.
	KindNone Kind = ""

	// KindLocalServer is a local model server that lists and serves models by name.
	KindLocalServer Kind = "local-server"

	// KindInProcess is a heavyweight backend that loads a model before serving it.
	KindInProcess Kind = "in-process"
)

// Kinds returns every selectable Kind in preference order.
func Kinds() []Kind {
	return []Kind{KindLocalServer, KindInProcess}
}

// ParseKind parses a backend identifier. The legacy names "ollama",
// "transformers" and "llama.cpp" are accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(KindLocalServer), "ollama":
		return KindLocalServer, nil
	case string(KindInProcess), "transformers", "llama.cpp":
		return KindInProcess, nil
	default:
		return KindNone, fmt.Errorf("%w: %q", ErrInvalidBackend, s)
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == KindNone {
		return "none"
	}
	return string(k)
}

// Backend defines the core interface for all inference backends.
type Backend interface {
	// Kind returns the backend identifier.
	Kind() Kind

	// Probe reports whether the backend's runtime dependency is present.
	Probe(ctx context.Context) error

	// Load validates or loads the named model and returns a handle that serves it.
	// It may block for a long time for backends that keep a resident model.
	Load(ctx context.Context, model string) (Handle, error)

	// DefaultModel is used when a switch does not name a model.
	DefaultModel() string

	// Concurrency is the number of requests the backend serves in parallel.
	Concurrency() int

	// Resident reports whether Load keeps a model in memory. At most one
	// resident model is held at a time.
	Resident() bool
}

// LocalServer is implemented by backends that can enumerate installed models.
type LocalServer interface {
	Backend

	// ListModels returns installed model identifiers in server order.
	ListModels(ctx context.Context) ([]string, error)
}

// Handle serves inference for one selected model.
type Handle interface {
	// Model returns the model this handle serves.
	Model() string

	// Resident reports whether the handle owns a loaded model that must be released.
	Resident() bool

	// Infer executes inference and returns the complete result.
	Infer(ctx context.Context, req *Request) (*Response, error)

	// Close releases resources held by the handle.
	Close() error
}

// Request encapsulates all parameters for an inference call.
type Request struct {
	// Parameters contains backend-specific inference parameters.
	Parameters map[string]any

	// Model overrides the handle's model when the backend supports it.
	Model string

	// Prompt is the full prompt text.
	Prompt string
}

// Response contains the result of an inference operation.
type Response struct {
	// Metadata contains backend-specific information.
	Metadata *ResponseMetadata

	// Text is the generated text.
	Text string
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	Timestamp       time.Time      `json:"timestamp"`
	BackendSpecific map[string]any `json:"backend_specific,omitempty"`
	Kind            Kind           `json:"kind"`
	Model           string         `json:"model"`
	DurationSeconds float64        `json:"inference_time_seconds"`
}
