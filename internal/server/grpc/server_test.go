package grpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ekisa-team/fairjudge/internal/backend"
)

type fakeNotifier struct {
	fns   []func(backend.State)
	state backend.State
}

func (f *fakeNotifier) OnChange(fn func(backend.State)) {
	f.fns = append(f.fns, fn)
}

func (f *fakeNotifier) State() backend.State {
	return f.state
}

func (f *fakeNotifier) set(st backend.State) {
	f.state = st
	for _, fn := range f.fns {
		fn(st)
	}
}

func TestServer_HealthFollowsBackendState(t *testing.T) {
	n := &fakeNotifier{}
	s := NewServer("127.0.0.1", 0, n)

	check := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := s.Health().Check(t.Context(), &healthpb.HealthCheckRequest{Service: ServiceName})
		require.NoError(t, err)
		return resp.GetStatus()
	}

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check())

	n.set(backend.State{Kind: backend.KindLocalServer, Model: "llama3.2", Loaded: true})
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check())

	n.set(backend.State{Kind: backend.KindLocalServer, Model: "llama3.2", Loaded: true, Switching: true})
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check())

	// A failed reload leaves the in-process backend active without a model.
	n.set(backend.State{Kind: backend.KindInProcess})
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check())
}
