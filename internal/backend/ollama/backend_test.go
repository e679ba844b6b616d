package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/fairjudge/internal/backend"
	"github.com/ekisa-team/fairjudge/internal/config"
)

// fakeOllama serves the subset of the OpenAI-compatible API used by Backend.
func fakeOllama(t *testing.T, models []string, reply string) (*httptest.Server, *atomic.Value) {
	t.Helper()

	var lastModel atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, _ *http.Request) {
		data := make([]map[string]any, 0, len(models))
		for _, m := range models {
			data = append(data, map[string]any{"id": m, "object": "model", "created": 0, "owned_by": "library"})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
	})
	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		lastModel.Store(body.Model)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   body.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, &lastModel
}

func newTestBackend(url string) *Backend {
	return NewBackend(config.LocalServerConfig{
		BaseURL:      url + "/v1",
		DefaultModel: "llama3.2",
		Concurrency:  3,
	})
}

func TestBackend_ListModels(t *testing.T) {
	srv, _ := fakeOllama(t, []string{"llama3.2:latest", "qwen2.5:7b"}, "")
	b := newTestBackend(srv.URL)

	models, err := b.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2:latest", "qwen2.5:7b"}, models)
	assert.NoError(t, b.Probe(context.Background()))
	assert.Equal(t, 3, b.Concurrency())
	assert.False(t, b.Resident())
}

func TestBackend_Probe_Unreachable(t *testing.T) {
	srv, _ := fakeOllama(t, nil, "")
	url := srv.URL
	srv.Close()

	err := newTestBackend(url).Probe(context.Background())
	assert.ErrorIs(t, err, backend.ErrBackendUnavailable)
}

func TestBackend_Load(t *testing.T) {
	srv, lastModel := fakeOllama(t, []string{"llama3.2:latest"}, "Neutral summary. 42")
	b := newTestBackend(srv.URL)

	t.Run("untagged name matches latest", func(t *testing.T) {
		h, err := b.Load(context.Background(), "llama3.2")
		require.NoError(t, err)
		assert.Equal(t, "llama3.2", h.Model())
		assert.False(t, h.Resident())

		resp, err := h.Infer(context.Background(), &backend.Request{Prompt: "Summarize."})
		require.NoError(t, err)
		assert.Equal(t, "Neutral summary. 42", resp.Text)
		assert.Equal(t, "llama3.2", lastModel.Load())

		_, err = h.Infer(context.Background(), &backend.Request{Prompt: "Summarize.", Model: "phi4"})
		require.NoError(t, err)
		assert.Equal(t, "phi4", lastModel.Load())
	})

	t.Run("missing model lists installed", func(t *testing.T) {
		_, err := b.Load(context.Background(), "mistral")
		require.ErrorIs(t, err, backend.ErrModelNotFound)

		var mnf *backend.ModelNotFoundError
		require.ErrorAs(t, err, &mnf)
		assert.Equal(t, []string{"llama3.2:latest"}, mnf.Installed)
	})
}
