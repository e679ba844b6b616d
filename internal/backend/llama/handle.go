package llama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"time"

	"github.com/ekisa-team/fairjudge/internal/backend"
	"github.com/ekisa-team/fairjudge/internal/mapsafe"
	"github.com/ekisa-team/fairjudge/internal/model"
)

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is a request to the llama-server API.
type ChatCompletionRequest struct {
	Messages         []ChatMessage `json:"messages"`
	Temperature      float64       `json:"temperature,omitempty"`
	TopK             int           `json:"top_k,omitempty"`
	TopP             float64       `json:"top_p,omitempty"`
	MinP             float64       `json:"min_p,omitempty"`
	NPredict         int           `json:"n_predict,omitempty"`
	RepeatPenalty    float64       `json:"repeat_penalty,omitempty"`
	PresencePenalty  float64       `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64       `json:"frequency_penalty,omitempty"`
	Stop             []string      `json:"stop,omitempty"`
}

// ChatCompletionResponse is a response from the llama-server API.
type ChatCompletionResponse struct {
	Timings map[string]any `json:"timings,omitempty"`
	ID      string         `json:"id,omitempty"`
	Model   string         `json:"model,omitempty"`
	Choices []Choice       `json:"choices"`
	Usage   Usage          `json:"usage"`
}

// Choice represents a single choice in a response.
type Choice struct {
	FinishReason string      `json:"finish_reason"`
	Message      ChatMessage `json:"message"`
	Index        int         `json:"index"`
}

// Usage represents the token usage of a response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Handle serves a model loaded into a running llama-server.
type Handle struct {
	launcher Launcher
	instance *model.Instance
	client   *http.Client
	defaults map[string]any
	baseURL  string
	port     int
}

func newHandle(b *Backend, instance *model.Instance) *Handle {
	return &Handle{
		launcher: b.launcher,
		instance: instance,
		client:   &http.Client{},
		defaults: b.cfg.Parameters,
		baseURL:  fmt.Sprintf("http://%s:%d", b.host(), b.cfg.Port),
		port:     b.cfg.Port,
	}
}

// Model implements backend.Handle.
func (h *Handle) Model() string {
	return h.instance.ID()
}

// Resident implements backend.Handle.
func (h *Handle) Resident() bool {
	return true
}

// Instance returns the loaded model instance.
func (h *Handle) Instance() *model.Instance {
	return h.instance
}

// Close stops the server and unloads the model.
func (h *Handle) Close() error {
	defer h.instance.SetStatus(model.StatusUnloaded)
	return h.launcher.StopServer(BackendName, h.port)
}

// Infer implements backend.Handle. The request's Model is ignored; the server
// only serves the model it was started with.
func (h *Handle) Infer(ctx context.Context, req *backend.Request) (*backend.Response, error) {
	if h.instance.Snapshot().Status != model.StatusLoaded {
		return nil, backend.ErrModelNotLoaded
	}

	jsonData, err := json.Marshal(buildChatCompletionRequest(req, h.defaults))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/v1/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start).Seconds()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		return nil, fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, body)
	}

	var completionResp ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completionResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	content := ""
	if len(completionResp.Choices) > 0 {
		content = completionResp.Choices[0].Message.Content
	}

	return &backend.Response{
		Text: content,
		Metadata: &backend.ResponseMetadata{
			Kind:            backend.KindInProcess,
			Model:           h.instance.ID(),
			Timestamp:       time.Now(),
			DurationSeconds: elapsed,
			BackendSpecific: map[string]any{
				"usage":   completionResp.Usage,
				"timings": completionResp.Timings,
			},
		},
	}, nil
}

// buildChatCompletionRequest builds a ChatCompletionRequest from a
// backend.Request. Request parameters take precedence over defaults.
func buildChatCompletionRequest(req *backend.Request, defaults map[string]any) *ChatCompletionRequest {
	p := make(map[string]any, len(defaults)+len(req.Parameters))
	maps.Copy(p, defaults)
	maps.Copy(p, req.Parameters)

	messages := []ChatMessage{
		{Role: "user", Content: req.Prompt},
	}

	if sysPrompt := mapsafe.Get(p, "system_prompt", ""); sysPrompt != "" {
		messages = append([]ChatMessage{{Role: "system", Content: sysPrompt}}, messages...)
	}

	return &ChatCompletionRequest{
		Messages:         messages,
		NPredict:         mapsafe.Get(p, "n_predict", 512),
		Temperature:      mapsafe.Get(p, "temperature", 0.7),
		TopK:             mapsafe.Get(p, "top_k", 40),
		TopP:             mapsafe.Get(p, "top_p", 0.9),
		MinP:             mapsafe.Get(p, "min_p", 0.05),
		RepeatPenalty:    mapsafe.Get(p, "repeat_penalty", 1.1),
		PresencePenalty:  mapsafe.Get(p, "presence_penalty", 0.0),
		FrequencyPenalty: mapsafe.Get(p, "frequency_penalty", 0.0),
		Stop:             mapsafe.Get[[]string](p, "stop", nil),
	}
}
