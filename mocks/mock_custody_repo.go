package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"papertrail/internal/domain"
	"papertrail/internal/port"
)

// MockCustodyRepo is a mock implementation of port.CustodyRepository.
type MockCustodyRepo struct {
	mock.Mock
}

func (m *MockCustodyRepo) EnsureRecord(ctx context.Context, documentID int64) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockCustodyRepo) GetByDocument(ctx context.Context, documentID int64) (*domain.CustodyRecord, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustodyRecord), args.Error(1)
}

func (m *MockCustodyRepo) LockByDocument(ctx context.Context, documentID int64) (*domain.CustodyRecord, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustodyRecord), args.Error(1)
}

func (m *MockCustodyRepo) Checkout(ctx context.Context, p port.CheckoutParams) (*domain.CustodyRecord, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustodyRecord), args.Error(1)
}

func (m *MockCustodyRepo) Checkin(ctx context.Context, documentID int64, holder domain.Holder, at time.Time) (*domain.CustodyRecord, error) {
	args := m.Called(ctx, documentID, holder, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustodyRecord), args.Error(1)
}

func (m *MockCustodyRepo) Transfer(ctx context.Context, p port.TransferParams) (*domain.CustodyRecord, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustodyRecord), args.Error(1)
}

func (m *MockCustodyRepo) Reset(ctx context.Context, recordID int64, expected domain.Holder, at time.Time) error {
	args := m.Called(ctx, recordID, expected, at)
	return args.Error(0)
}

func (m *MockCustodyRepo) SetLastEntry(ctx context.Context, recordID int64, entryID *int64) error {
	args := m.Called(ctx, recordID, entryID)
	return args.Error(0)
}

func (m *MockCustodyRepo) ListHeldBy(ctx context.Context, holder domain.Holder) ([]domain.CustodyRecord, error) {
	args := m.Called(ctx, holder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CustodyRecord), args.Error(1)
}

func (m *MockCustodyRepo) ListOverdue(ctx context.Context, asOf time.Time, offset, limit int) ([]domain.CustodyRecord, int, error) {
	args := m.Called(ctx, asOf, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.CustodyRecord), args.Int(1), args.Error(2)
}
