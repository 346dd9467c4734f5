package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"papertrail/internal/domain"
)

// MockCustodyNotifier is a mock implementation of port.CustodyNotifier.
type MockCustodyNotifier struct {
	mock.Mock
}

func (m *MockCustodyNotifier) SendCustodyNotice(ctx context.Context, toEmail, toName string, notice domain.CustodyNotice) error {
	args := m.Called(ctx, toEmail, toName, notice)
	return args.Error(0)
}
