package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalog_AvailableKinds(t *testing.T) {
	localServer := new(MockLocalServer)
	localServer.On("Kind").Return(KindLocalServer)
	localServer.On("Probe", mock.Anything).Return(nil)

	inProcess := new(MockBackend)
	inProcess.On("Kind").Return(KindInProcess)
	inProcess.On("Probe", mock.Anything).Return(errors.New("llama-server: executable file not found"))

	reg, err := NewRegistry(localServer, inProcess)
	require.NoError(t, err)

	c := NewCatalog(reg)
	assert.Equal(t, []Kind{KindLocalServer}, c.AvailableKinds(t.Context()))
	assert.True(t, c.IsAvailable(t.Context(), KindLocalServer))
	assert.False(t, c.IsAvailable(t.Context(), KindInProcess))
	assert.False(t, c.IsAvailable(t.Context(), KindNone))
}

func TestCatalog_LocalServerModels(t *testing.T) {
	t.Run("installed", func(t *testing.T) {
		ls := new(MockLocalServer)
		ls.On("Kind").Return(KindLocalServer)
		ls.On("ListModels", mock.Anything).Return([]string{"llama3.2:latest", "phi4:latest"}, nil)

		reg, err := NewRegistry(ls)
		require.NoError(t, err)

		c := NewCatalog(reg)
		assert.Equal(t, []string{"llama3.2:latest", "phi4:latest"}, c.LocalServerModels(t.Context()))
		assert.True(t, c.HasLocalServerModel(t.Context(), "phi4"))
		assert.False(t, c.HasLocalServerModel(t.Context(), "mistral"))
	})

	t.Run("unreachable yields empty list", func(t *testing.T) {
		ls := new(MockLocalServer)
		ls.On("Kind").Return(KindLocalServer)
		ls.On("ListModels", mock.Anything).Return(nil, errors.New("connection refused"))

		reg, err := NewRegistry(ls)
		require.NoError(t, err)

		models := NewCatalog(reg).LocalServerModels(t.Context())
		assert.NotNil(t, models)
		assert.Empty(t, models)
	})

	t.Run("not registered", func(t *testing.T) {
		reg, err := NewRegistry()
		require.NoError(t, err)

		assert.Empty(t, NewCatalog(reg).LocalServerModels(t.Context()))
	})
}

func TestMatchModel(t *testing.T) {
	installed := []string{"llama3.2:latest", "qwen2.5:7b"}

	assert.True(t, MatchModel(installed, "llama3.2"))
	assert.True(t, MatchModel(installed, "llama3.2:latest"))
	assert.True(t, MatchModel(installed, "qwen2.5:7b"))
	assert.False(t, MatchModel(installed, "qwen2.5"))
	assert.False(t, MatchModel(installed, "llama3.2:1b"))
	assert.False(t, MatchModel(installed, ""))
	assert.False(t, MatchModel(nil, "llama3.2"))
}
