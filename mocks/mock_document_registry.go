package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"papertrail/internal/domain"
)

// MockDocumentRegistry is a mock implementation of port.DocumentRegistry.
type MockDocumentRegistry struct {
	mock.Mock
}

func (m *MockDocumentRegistry) GetDocument(ctx context.Context, documentID int64) (*domain.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}
