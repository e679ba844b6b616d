// Package ollama implements the local-server backend against Ollama's
// OpenAI-compatible API.
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ekisa-team/fairjudge/internal/backend"
	"github.com/ekisa-team/fairjudge/internal/config"
	"github.com/ekisa-team/fairjudge/internal/mapsafe"
)

// Backend implements backend.LocalServer for Ollama.
type Backend struct {
	client openai.Client
	cfg    config.LocalServerConfig
}

// NewBackend creates a Backend talking to cfg.BaseURL. Extra request options
// are applied to every call.
func NewBackend(cfg config.LocalServerConfig, opts ...option.RequestOption) *Backend {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "ollama"
	}

	opts = append([]option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(1),
	}, opts...)

	return &Backend{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}
}

// Kind implements backend.Backend.
func (b *Backend) Kind() backend.Kind {
	return backend.KindLocalServer
}

// DefaultModel implements backend.Backend.
func (b *Backend) DefaultModel() string {
	return b.cfg.DefaultModel
}

// Concurrency implements backend.Backend.
func (b *Backend) Concurrency() int {
	return max(b.cfg.Concurrency, 1)
}

// Resident implements backend.Backend. The server owns model memory.
func (b *Backend) Resident() bool {
	return false
}

// Probe reports whether the server answers the model listing endpoint.
func (b *Backend) Probe(ctx context.Context) error {
	if _, err := b.ListModels(ctx); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendUnavailable, err)
	}
	return nil
}

// ListModels implements backend.LocalServer.
func (b *Backend) ListModels(ctx context.Context) ([]string, error) {
	page, err := b.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	models := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, m.ID)
	}

	return models, nil
}

// Load checks that the model is installed. Nothing is loaded client side.
func (b *Backend) Load(ctx context.Context, model string) (backend.Handle, error) {
	installed, err := b.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", backend.ErrBackendUnavailable, err)
	}

	if !backend.MatchModel(installed, model) {
		return nil, &backend.ModelNotFoundError{
			Kind:      backend.KindLocalServer,
			Model:     model,
			Installed: installed,
		}
	}

	return &Handle{client: b.client, model: model}, nil
}

// Handle serves one installed model.
type Handle struct {
	client openai.Client
	model  string
}

// Model implements backend.Handle.
func (h *Handle) Model() string {
	return h.model
}

// Resident implements backend.Handle.
func (h *Handle) Resident() bool {
	return false
}

// Close implements backend.Handle.
func (h *Handle) Close() error {
	return nil
}

// Infer implements backend.Handle. A non-empty req.Model overrides the
// handle's model for this call only.
func (h *Handle) Infer(ctx context.Context, req *backend.Request) (*backend.Response, error) {
	model := h.model
	if req.Model != "" {
		model = req.Model
	}

	messages := []openai.ChatCompletionMessageParamUnion{openai.UserMessage(req.Prompt)}
	if sys := mapsafe.Get(req.Parameters, "system_prompt", ""); sys != "" {
		messages = append([]openai.ChatCompletionMessageParamUnion{openai.SystemMessage(sys)}, messages...)
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	}
	if t := mapsafe.Get(req.Parameters, "temperature", -1.0); t >= 0 {
		params.Temperature = openai.Float(t)
	}
	if n := mapsafe.Get(req.Parameters, "max_tokens", 0); n > 0 {
		params.MaxTokens = openai.Int(int64(n))
	}

	start := time.Now()

	completion, err := h.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion with %s: %w", model, err)
	}

	text := ""
	if len(completion.Choices) > 0 {
		text = completion.Choices[0].Message.Content
	}

	return &backend.Response{
		Text: text,
		Metadata: &backend.ResponseMetadata{
			Kind:            backend.KindLocalServer,
			Model:           model,
			Timestamp:       time.Now(),
			DurationSeconds: time.Since(start).Seconds(),
			BackendSpecific: map[string]any{
				"prompt_tokens":     completion.Usage.PromptTokens,
				"completion_tokens": completion.Usage.CompletionTokens,
			},
		},
	}, nil
}
