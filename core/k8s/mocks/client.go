package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/AgbodesiImoagene/coingro-controller/core/k8s"
)

// Client is a mock implementation of k8s.Client
type Client struct {
	mock.Mock
}

func (m *Client) EnsureNamespace(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Client) GetInstance(ctx context.Context, name string) (*k8s.Instance, error) {
	args := m.Called(ctx, name)
	if inst, ok := args.Get(0).(*k8s.Instance); ok {
		return inst, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListInstances(ctx context.Context) ([]k8s.Instance, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]k8s.Instance); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateInstance(ctx context.Context, name string, env map[string]string) error {
	args := m.Called(ctx, name, env)
	return args.Error(0)
}

func (m *Client) ReplaceInstance(ctx context.Context, name string, env map[string]string) error {
	args := m.Called(ctx, name, env)
	return args.Error(0)
}

func (m *Client) DeleteInstance(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
