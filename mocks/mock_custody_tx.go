package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"papertrail/internal/port"
)

// MockCustodyTx is a mock implementation of port.CustodyTx. When the
// expectation returns a nil error, fn runs against Stores and its result is
// returned, so tests observe the same all-or-nothing contract as the real runner.
type MockCustodyTx struct {
	mock.Mock
	Stores port.CustodyStores
}

func (m *MockCustodyTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores port.CustodyStores) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m.Stores)
}
