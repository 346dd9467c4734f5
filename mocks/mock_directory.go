package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"papertrail/internal/domain"
)

// MockDirectory is a mock implementation of port.Directory.
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDirectory) ResolveClientName(ctx context.Context, clientID int64) (string, error) {
	args := m.Called(ctx, clientID)
	return args.String(0), args.Error(1)
}

func (m *MockDirectory) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
