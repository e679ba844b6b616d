package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	mockBackend := new(MockBackend)
	mockBackend.On("Kind").Return(KindLocalServer)

	reg, err := NewRegistry(mockBackend)
	require.NoError(t, err)

	got, ok := reg.Get(KindLocalServer)
	assert.True(t, ok)
	assert.Equal(t, mockBackend, got)

	// Ensure a missing backend returns false
	_, ok = reg.Get(KindInProcess)
	assert.False(t, ok)

	mockBackend.AssertExpectations(t)
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	b1 := new(MockBackend)
	b2 := new(MockBackend)
	b1.On("Kind").Return(KindInProcess)
	b2.On("Kind").Return(KindInProcess)

	_, err := NewRegistry(b1, b2)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegistry_Kinds(t *testing.T) {
	inProcess := new(MockBackend)
	inProcess.On("Kind").Return(KindInProcess)
	localServer := new(MockBackend)
	localServer.On("Kind").Return(KindLocalServer)

	reg, err := NewRegistry(inProcess, localServer)
	require.NoError(t, err)

	assert.Equal(t, []Kind{KindLocalServer, KindInProcess}, reg.Kinds())
}

func TestRegistry_GetLocalServer(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	// Backend without model listing
	basic := new(MockBackend)
	basic.On("Kind").Return(KindInProcess)
	require.NoError(t, reg.Register(basic))

	ls, ok := reg.GetLocalServer(KindInProcess)
	assert.False(t, ok)
	assert.Nil(t, ls)

	// Backend with model listing
	lister := new(MockLocalServer)
	lister.On("Kind").Return(KindLocalServer)
	require.NoError(t, reg.Register(lister))

	ls, ok = reg.GetLocalServer(KindLocalServer)
	assert.True(t, ok)
	assert.Equal(t, lister, ls)

	basic.AssertExpectations(t)
	lister.AssertExpectations(t)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "local-server", want: KindLocalServer},
		{in: "ollama", want: KindLocalServer},
		{in: " Ollama ", want: KindLocalServer},
		{in: "in-process", want: KindInProcess},
		{in: "transformers", want: KindInProcess},
		{in: "llama.cpp", want: KindInProcess},
		{in: "gpt", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBackend)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "none", KindNone.String())
}
