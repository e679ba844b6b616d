package llama

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/fairjudge/internal/backend"
	"github.com/ekisa-team/fairjudge/internal/config"
	"github.com/ekisa-team/fairjudge/internal/config/source"
	"github.com/ekisa-team/fairjudge/internal/model"
)

type MockLauncher struct {
	mock.Mock
}

func (m *MockLauncher) StartServer(ctx context.Context, cfg backend.ServerConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockLauncher) StopServer(name string, port int) error {
	args := m.Called(name, port)
	return args.Error(0)
}

type fakeFetcher struct {
	err  error
	path string
}

func (f fakeFetcher) Fetch(context.Context, string, map[string]config.ModelConfig, string) (string, error) {
	return f.path, f.err
}

type MockCommandRunner struct {
	mock.Mock
}

func (m *MockCommandRunner) Run(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	called := m.Called(ctx, name, args, stdin)
	return called.Get(0).([]byte), called.Get(1).([]byte), called.Error(2)
}

func writeGGUF(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("gguf"), 0o644))
	}
}

// fakeServer mimics llama-server's chat completions endpoint.
func fakeServer(t *testing.T, reply string) (*httptest.Server, int) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}

		var req ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		_ = json.NewEncoder(w).Encode(ChatCompletionResponse{
			Choices: []Choice{{Message: ChatMessage{Role: "assistant", Content: reply}}},
			Usage:   Usage{TotalTokens: 12},
		})
	}))
	t.Cleanup(srv.Close)

	_, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return srv, port
}

func TestBackend_Load(t *testing.T) {
	dir := t.TempDir()
	writeGGUF(t, dir, "mmproj-f16.gguf", "qwen-q4_k_m-00002-of-00002.gguf", "qwen-q4_k_m-00001-of-00002.gguf")

	_, port := fakeServer(t, "A concise summary.")

	launcher := &MockLauncher{}
	launcher.On("StartServer", mock.Anything, mock.MatchedBy(func(cfg backend.ServerConfig) bool {
		return cfg.Name == BackendName && cfg.Port == port && cfg.Args[1] == filepath.Join(dir, "qwen-q4_k_m-00001-of-00002.gguf")
	})).Return(nil)
	launcher.On("StopServer", BackendName, port).Return(nil)

	b := NewBackend(config.InProcessConfig{
		BinPath:      "llama-server",
		Host:         "127.0.0.1",
		Port:         port,
		Parallel:     2,
		DefaultModel: "qwen",
		Parameters:   map[string]any{"n_predict": 64},
	}, t.TempDir(), WithLauncher(launcher), WithFetcher(fakeFetcher{path: dir}))

	assert.Equal(t, backend.KindInProcess, b.Kind())
	assert.Equal(t, 2, b.Concurrency())
	assert.True(t, b.Resident())

	h, err := b.Load(context.Background(), "qwen")
	require.NoError(t, err)
	assert.Equal(t, "qwen", h.Model())
	assert.True(t, h.Resident())

	resp, err := h.Infer(context.Background(), &backend.Request{Prompt: "Summarize."})
	require.NoError(t, err)
	assert.Equal(t, "A concise summary.", resp.Text)
	assert.Equal(t, backend.KindInProcess, resp.Metadata.Kind)

	require.NoError(t, h.Close())
	assert.Equal(t, model.StatusUnloaded, h.(*Handle).Instance().Snapshot().Status)

	_, err = h.Infer(context.Background(), &backend.Request{Prompt: "again"})
	assert.ErrorIs(t, err, backend.ErrModelNotLoaded)

	launcher.AssertExpectations(t)
}

func TestBackend_Load_UnknownModel(t *testing.T) {
	b := NewBackend(config.InProcessConfig{
		Models: map[string]config.ModelConfig{"qwen": {}},
	}, t.TempDir(), WithLauncher(&MockLauncher{}), WithFetcher(fakeFetcher{err: source.ErrUnknownModel}))

	_, err := b.Load(context.Background(), "nope")
	require.ErrorIs(t, err, backend.ErrModelNotFound)

	var mnf *backend.ModelNotFoundError
	require.ErrorAs(t, err, &mnf)
	assert.Equal(t, []string{"qwen"}, mnf.Installed)
}

func TestBackend_Load_ServerFails(t *testing.T) {
	dir := t.TempDir()
	writeGGUF(t, dir, "model.gguf")

	launcher := &MockLauncher{}
	launcher.On("StartServer", mock.Anything, mock.Anything).Return(errors.New("out of memory"))

	b := NewBackend(config.InProcessConfig{Port: 8081}, t.TempDir(), WithLauncher(launcher), WithFetcher(fakeFetcher{path: dir}))

	_, err := b.Load(context.Background(), "model")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestBackend_ResolveModelPath(t *testing.T) {
	b := NewBackend(config.InProcessConfig{}, "")

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		writeGGUF(t, dir, "a.gguf")

		path, err := b.ResolveModelPath(filepath.Join(dir, "a.gguf"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "a.gguf"), path)
	})

	t.Run("no gguf", func(t *testing.T) {
		dir := t.TempDir()
		writeGGUF(t, dir, "README.md", "mmproj-model.gguf")

		_, err := b.ResolveModelPath(dir)
		assert.ErrorIs(t, err, ErrNoModelFile)
	})
}

func TestBackend_Probe(t *testing.T) {
	runner := &MockCommandRunner{}
	runner.On("Run", mock.Anything, "/usr/bin/llama-server", []string{"--version"}, nil).
		Return([]byte("version: 4567"), []byte{}, nil).Once()
	runner.On("Run", mock.Anything, "/usr/bin/llama-server", []string{"--version"}, nil).
		Return([]byte{}, []byte("broken"), errors.New("exit status 1")).Once()

	exec := backend.NewExecutorWithRunner("/usr/bin/llama-server", time.Second, runner)
	b := NewBackend(config.InProcessConfig{BinPath: "/usr/bin/llama-server"}, "", WithExecutor(exec))

	assert.NoError(t, b.Probe(context.Background()))

	err := b.Probe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	runner.AssertExpectations(t)
}

func TestBuildChatCompletionRequest(t *testing.T) {
	req := buildChatCompletionRequest(&backend.Request{
		Prompt:     "hello",
		Parameters: map[string]any{"temperature": 0.1, "system_prompt": "be brief"},
	}, map[string]any{"temperature": 0.9, "n_predict": 64})

	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "hello", req.Messages[1].Content)
	assert.InDelta(t, 0.1, req.Temperature, 1e-9)
	assert.Equal(t, 64, req.NPredict)
	assert.Equal(t, 40, req.TopK)
}
