package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o644))

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(t.Context(), path, func(cfg *Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	})
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, 45*time.Second, w.Snapshot().Judge.CallTimeout)

	updated := strings.Replace(validConfig, "call_timeout: 45s", "call_timeout: 10s", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 10*time.Second, cfg.Judge.CallTimeout)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	assert.Equal(t, 10*time.Second, w.Snapshot().Judge.CallTimeout)
	assert.GreaterOrEqual(t, w.ReloadCount(), uint32(1))
}

func TestWatcher_InvalidReloadKeepsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o644))

	failed := make(chan error, 4)
	w, err := NewWatcher(t.Context(), path, func(_ *Config, err error) {
		if err != nil {
			failed <- err
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("version: \"2\"\n"), 0o644))

	select {
	case err := <-failed:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("invalid config was not reported")
	}

	assert.Equal(t, 45*time.Second, w.Snapshot().Judge.CallTimeout)
}

func TestStatic(t *testing.T) {
	cfg := Default()
	assert.Same(t, cfg, NewStatic(cfg).Snapshot())
}
