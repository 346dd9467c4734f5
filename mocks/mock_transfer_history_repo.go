package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"papertrail/internal/domain"
)

// MockTransferHistoryRepo is a mock implementation of port.TransferHistoryRepository.
type MockTransferHistoryRepo struct {
	mock.Mock
}

func (m *MockTransferHistoryRepo) Create(ctx context.Context, entry *domain.TransferHistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTransferHistoryRepo) GetByID(ctx context.Context, entryID int64) (*domain.TransferHistoryEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransferHistoryEntry), args.Error(1)
}

func (m *MockTransferHistoryRepo) MarkReturned(ctx context.Context, entryID int64, at time.Time, notes string, performedBy int64) error {
	args := m.Called(ctx, entryID, at, notes, performedBy)
	return args.Error(0)
}

func (m *MockTransferHistoryRepo) CloseEntry(ctx context.Context, entryID int64, at time.Time, notes string) error {
	args := m.Called(ctx, entryID, at, notes)
	return args.Error(0)
}

func (m *MockTransferHistoryRepo) FindOpenForUser(ctx context.Context, documentID, userID int64) (*domain.TransferHistoryEntry, error) {
	args := m.Called(ctx, documentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransferHistoryEntry), args.Error(1)
}

func (m *MockTransferHistoryRepo) LatestForDocument(ctx context.Context, documentID int64) (*domain.TransferHistoryEntry, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransferHistoryEntry), args.Error(1)
}

func (m *MockTransferHistoryRepo) Delete(ctx context.Context, entryID int64) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *MockTransferHistoryRepo) ListByDocument(ctx context.Context, documentID int64, offset, limit int) ([]domain.TransferHistoryEntry, int, error) {
	args := m.Called(ctx, documentID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.TransferHistoryEntry), args.Int(1), args.Error(2)
}

func (m *MockTransferHistoryRepo) ListAllByDocument(ctx context.Context, documentID int64) ([]domain.TransferHistoryEntry, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransferHistoryEntry), args.Error(1)
}
