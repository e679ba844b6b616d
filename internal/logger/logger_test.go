package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/fairjudge/internal/env"
)

func TestNew_Development(t *testing.T) {
	var buf bytes.Buffer
	log := New(env.Development, WithWriter(&buf))

	log.Debug("loading model", "model", "llama3.2")

	out := buf.String()
	assert.Contains(t, out, "loading model")
	assert.Contains(t, out, "llama3.2")
}

func TestNew_Production(t *testing.T) {
	var buf bytes.Buffer
	log := New(env.Production, WithWriter(&buf))

	log.Debug("hidden")
	log.Info("judged", "backend", "local-server")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "judged", entry["msg"])
	assert.Equal(t, "local-server", entry["backend"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	log := New(env.Development, WithWriter(&buf), WithLevel(slog.LevelWarn))

	log.Info("quiet")
	assert.Empty(t, buf.String())

	log.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestNew_LogToFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "fairjudge.log")
	log := New(env.Production, WithWriter(&buf), WithLogToFile(true), WithLogFile(path))

	log.Info("written twice")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written twice")
	assert.Contains(t, buf.String(), "written twice")
}
