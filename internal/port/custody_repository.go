package port

import (
	"context"
	"time"

	"papertrail/internal/domain"
)

// CheckoutParams carries the values written by a checkout.
type CheckoutParams struct {
	DocumentID         int64
	Holder             domain.Holder
	At                 time.Time
	ExpectedReturnDate *time.Time
	Notes              string
}

// TransferParams carries the values written by a transfer.
type TransferParams struct {
	DocumentID         int64
	From               domain.Holder
	To                 domain.Holder
	At                 time.Time
	ExpectedReturnDate *time.Time
	Notes              string
}

// CustodyRepository defines the contract for the custody ledger.
// State transitions are conditional updates; a transition whose precondition
// no longer holds affects zero rows and returns a domain.ErrConflict error.
type CustodyRepository interface {
	EnsureRecord(ctx context.Context, documentID int64) error
	GetByDocument(ctx context.Context, documentID int64) (*domain.CustodyRecord, error)
	LockByDocument(ctx context.Context, documentID int64) (*domain.CustodyRecord, error)
	Checkout(ctx context.Context, p CheckoutParams) (*domain.CustodyRecord, error)
	Checkin(ctx context.Context, documentID int64, holder domain.Holder, at time.Time) (*domain.CustodyRecord, error)
	Transfer(ctx context.Context, p TransferParams) (*domain.CustodyRecord, error)
	Reset(ctx context.Context, recordID int64, expected domain.Holder, at time.Time) error
	SetLastEntry(ctx context.Context, recordID int64, entryID *int64) error
	ListHeldBy(ctx context.Context, holder domain.Holder) ([]domain.CustodyRecord, error)
	ListOverdue(ctx context.Context, asOf time.Time, offset, limit int) ([]domain.CustodyRecord, int, error)
}

// TransferHistoryRepository defines the contract for the custody audit trail.
type TransferHistoryRepository interface {
	Create(ctx context.Context, entry *domain.TransferHistoryEntry) error
	GetByID(ctx context.Context, entryID int64) (*domain.TransferHistoryEntry, error)
	MarkReturned(ctx context.Context, entryID int64, at time.Time, notes string, performedBy int64) error
	CloseEntry(ctx context.Context, entryID int64, at time.Time, notes string) error
	FindOpenForUser(ctx context.Context, documentID, userID int64) (*domain.TransferHistoryEntry, error)
	LatestForDocument(ctx context.Context, documentID int64) (*domain.TransferHistoryEntry, error)
	Delete(ctx context.Context, entryID int64) error
	ListByDocument(ctx context.Context, documentID int64, offset, limit int) ([]domain.TransferHistoryEntry, int, error)
	ListAllByDocument(ctx context.Context, documentID int64) ([]domain.TransferHistoryEntry, error)
}

// CustodyStores groups the repositories bound to one transaction.
type CustodyStores struct {
	Custody CustodyRepository
	History TransferHistoryRepository
}

// CustodyTx runs fn inside a single database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise. fn receives the
// transaction's context, which carries the runner's deadline; store calls
// inside fn must use it.
type CustodyTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores CustodyStores) error) error
}
