package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstance_Lifecycle(t *testing.T) {
	inst := NewInstance("qwen", "/models/qwen.gguf")
	assert.Equal(t, StatusUnloaded, inst.Snapshot().Status)
	assert.Nil(t, inst.Snapshot().LoadedAt)

	inst.SetStatus(StatusLoading)
	assert.Equal(t, StatusLoading, inst.Snapshot().Status)

	inst.Fail(errors.New("out of memory"))
	snap := inst.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "out of memory", snap.Error)

	inst.SetStatus(StatusLoaded)
	snap = inst.Snapshot()
	assert.Equal(t, StatusLoaded, snap.Status)
	assert.Empty(t, snap.Error)
	assert.NotNil(t, snap.LoadedAt)
	assert.Equal(t, "qwen", inst.ID())
	assert.Equal(t, "/models/qwen.gguf", inst.Path())
}
