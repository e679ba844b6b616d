package backend

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Kind() Kind {
	args := m.Called()
	return args.Get(0).(Kind)
}

func (m *MockBackend) Probe(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBackend) Load(ctx context.Context, model string) (Handle, error) {
	args := m.Called(ctx, model)
	if h, ok := args.Get(0).(Handle); ok {
		return h, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBackend) DefaultModel() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockBackend) Concurrency() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockBackend) Resident() bool {
	args := m.Called()
	return args.Bool(0)
}

type MockLocalServer struct {
	MockBackend
}

func (m *MockLocalServer) ListModels(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if models, ok := args.Get(0).([]string); ok {
		return models, args.Error(1)
	}
	return nil, args.Error(1)
}
