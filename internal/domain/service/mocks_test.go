package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"gsm-relay-remote/internal/domain/model"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, cmd model.RelayCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// memStore is a plain map-backed store for flow tests.
type memStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemStore(kv map[string]string) *memStore {
	values := make(map[string]string, len(kv))
	for k, v := range kv {
		values[k] = v
	}
	return &memStore{values: values}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memStore) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func bodyIs(body string) interface{} {
	return mock.MatchedBy(func(cmd model.RelayCommand) bool { return cmd.Body == body })
}
