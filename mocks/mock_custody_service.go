package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"papertrail/internal/domain"
	"papertrail/internal/service"
)

// MockCustodyService is a mock implementation of service.CustodyService.
type MockCustodyService struct {
	mock.Mock
}

func (m *MockCustodyService) Checkout(ctx context.Context, input *service.CheckoutInput) (*domain.CustodyRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustodyRecord), args.Error(1)
}

func (m *MockCustodyService) Checkin(ctx context.Context, input *service.CheckinInput) (*domain.CustodyRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustodyRecord), args.Error(1)
}

func (m *MockCustodyService) Transfer(ctx context.Context, input *service.TransferInput) (*domain.CustodyRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustodyRecord), args.Error(1)
}

func (m *MockCustodyService) Rollback(ctx context.Context, input *service.RollbackInput) (*domain.CustodyRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustodyRecord), args.Error(1)
}

func (m *MockCustodyService) GetCustody(ctx context.Context, documentID int64) (*domain.CustodyRecord, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustodyRecord), args.Error(1)
}

func (m *MockCustodyService) GetHistory(ctx context.Context, documentID int64, offset, limit int) ([]domain.TransferHistoryEntry, int, error) {
	args := m.Called(ctx, documentID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.TransferHistoryEntry), args.Int(1), args.Error(2)
}

func (m *MockCustodyService) GetHeldBy(ctx context.Context, userID int64) ([]domain.CustodyRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CustodyRecord), args.Error(1)
}

func (m *MockCustodyService) ListOverdue(ctx context.Context, asOf time.Time, offset, limit int) ([]domain.CustodyRecord, int, error) {
	args := m.Called(ctx, asOf, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.CustodyRecord), args.Int(1), args.Error(2)
}

func (m *MockCustodyService) ExportHistory(ctx context.Context, documentID int64, format domain.ExportFormat) (*service.HistoryExport, error) {
	args := m.Called(ctx, documentID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HistoryExport), args.Error(1)
}
