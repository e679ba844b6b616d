package xfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, home, ExpandTilde("~"))
	assert.Equal(t, filepath.Join(home, "models"), ExpandTilde("~/models"))
	assert.Equal(t, "/var/lib/models", ExpandTilde("/var/lib/models"))
	assert.Equal(t, "~other/models", ExpandTilde("~other/models"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "model.gguf")
	assert.NoError(t, os.WriteFile(f, []byte("gguf"), 0o644))

	assert.True(t, FileExists(f))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing.gguf")))
}
