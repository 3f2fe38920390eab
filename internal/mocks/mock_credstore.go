package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCredentialStore is a mock implementation of credstore.Service
type MockCredentialStore struct {
	mock.Mock
}

// Store mocks the Store method of credstore.Service
func (m *MockCredentialStore) Store(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// CurrentToken mocks the CurrentToken method of credstore.Service
func (m *MockCredentialStore) CurrentToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// Clear mocks the Clear method of credstore.Service
func (m *MockCredentialStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// IsStructurallyValid mocks the IsStructurallyValid method of credstore.Service
func (m *MockCredentialStore) IsStructurallyValid(token string) bool {
	args := m.Called(token)
	return args.Bool(0)
}
