package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"papertrail/internal/domain"
	"papertrail/internal/port"
)

const custodyColumns = `id, document_id, status, holder_kind, holder_id,
	previous_holder_kind, previous_holder_id, checked_out_at, checked_in_at,
	transferred_at, expected_return_date, notes, last_entry_id, created_at, updated_at`

type custodyRow struct {
	ID                 int64          `db:"id"`
	DocumentID         int64          `db:"document_id"`
	Status             string         `db:"status"`
	HolderKind         sql.NullString `db:"holder_kind"`
	HolderID           sql.NullInt64  `db:"holder_id"`
	PreviousHolderKind sql.NullString `db:"previous_holder_kind"`
	PreviousHolderID   sql.NullInt64  `db:"previous_holder_id"`
	CheckedOutAt       *time.Time     `db:"checked_out_at"`
	CheckedInAt        *time.Time     `db:"checked_in_at"`
	TransferredAt      *time.Time     `db:"transferred_at"`
	ExpectedReturnDate *time.Time     `db:"expected_return_date"`
	Notes              string         `db:"notes"`
	LastEntryID        *int64         `db:"last_entry_id"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

func (r *custodyRow) toDomain() *domain.CustodyRecord {
	return &domain.CustodyRecord{
		ID:                 r.ID,
		DocumentID:         r.DocumentID,
		Holder:             holderFromColumns(r.HolderKind, r.HolderID),
		Status:             domain.CustodyStatus(r.Status),
		PreviousHolder:     holderFromColumns(r.PreviousHolderKind, r.PreviousHolderID),
		CheckedOutAt:       r.CheckedOutAt,
		CheckedInAt:        r.CheckedInAt,
		TransferredAt:      r.TransferredAt,
		ExpectedReturnDate: r.ExpectedReturnDate,
		Notes:              r.Notes,
		LastEntryID:        r.LastEntryID,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func holderFromColumns(kind sql.NullString, id sql.NullInt64) domain.Holder {
	if !kind.Valid || !id.Valid {
		return domain.Holder{}
	}
	return domain.Holder{Kind: domain.HolderKind(kind.String), ID: id.Int64}
}

// holderArgs returns the (holder_kind, holder_id) query arguments for h.
func holderArgs(h domain.Holder) (kind, id any) {
	if h.IsNone() {
		return nil, nil
	}
	return string(h.Kind), h.ID
}

type custodyRepo struct {
	db sqlx.ExtContext
}

// NewCustodyRepo creates a PostgreSQL-backed CustodyRepository. db may be the
// pool or a transaction.
func NewCustodyRepo(db sqlx.ExtContext) port.CustodyRepository {
	return &custodyRepo{db: db}
}

func (r *custodyRepo) EnsureRecord(ctx context.Context, documentID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO custody_records (document_id) VALUES ($1)
		 ON CONFLICT (document_id) DO NOTHING`,
		documentID)
	if err != nil {
		return fmt.Errorf("custodyRepo.EnsureRecord: %w", err)
	}
	return nil
}

func (r *custodyRepo) GetByDocument(ctx context.Context, documentID int64) (*domain.CustodyRecord, error) {
	var row custodyRow
	err := sqlx.GetContext(ctx, r.db, &row,
		`SELECT `+custodyColumns+` FROM custody_records WHERE document_id = $1`, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("custodyRepo.GetByDocument: %w", err)
	}
	return row.toDomain(), nil
}

func (r *custodyRepo) LockByDocument(ctx context.Context, documentID int64) (*domain.CustodyRecord, error) {
	var row custodyRow
	err := sqlx.GetContext(ctx, r.db, &row,
		`SELECT `+custodyColumns+` FROM custody_records WHERE document_id = $1 FOR UPDATE`, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoActiveCustody
		}
		return nil, fmt.Errorf("custodyRepo.LockByDocument: %w", err)
	}
	return row.toDomain(), nil
}

// Checkout moves the row from available to checked_out. Zero affected rows
// means another writer got there first.
func (r *custodyRepo) Checkout(ctx context.Context, p port.CheckoutParams) (*domain.CustodyRecord, error) {
	kind, id := holderArgs(p.Holder)
	var row custodyRow
	err := sqlx.GetContext(ctx, r.db, &row,
		`UPDATE custody_records
		 SET status = 'checked_out', holder_kind = $2, holder_id = $3,
		     checked_out_at = $4, checked_in_at = NULL, transferred_at = NULL,
		     expected_return_date = $5, notes = $6, updated_at = $4
		 WHERE document_id = $1 AND status = 'available'
		 RETURNING `+custodyColumns,
		p.DocumentID, kind, id, p.At, p.ExpectedReturnDate, p.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAlreadyCheckedOut
		}
		return nil, fmt.Errorf("custodyRepo.Checkout: %w", err)
	}
	return row.toDomain(), nil
}

func (r *custodyRepo) Checkin(ctx context.Context, documentID int64, holder domain.Holder, at time.Time) (*domain.CustodyRecord, error) {
	kind, id := holderArgs(holder)
	var row custodyRow
	err := sqlx.GetContext(ctx, r.db, &row,
		`UPDATE custody_records
		 SET status = 'available',
		     previous_holder_kind = holder_kind, previous_holder_id = holder_id,
		     holder_kind = NULL, holder_id = NULL,
		     checked_in_at = $4, updated_at = $4
		 WHERE document_id = $1 AND status = 'checked_out'
		   AND holder_kind = $2 AND holder_id = $3
		 RETURNING `+custodyColumns,
		documentID, kind, id, at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHolderMismatch
		}
		return nil, fmt.Errorf("custodyRepo.Checkin: %w", err)
	}
	return row.toDomain(), nil
}

func (r *custodyRepo) Transfer(ctx context.Context, p port.TransferParams) (*domain.CustodyRecord, error) {
	fromKind, fromID := holderArgs(p.From)
	toKind, toID := holderArgs(p.To)
	var row custodyRow
	err := sqlx.GetContext(ctx, r.db, &row,
		`UPDATE custody_records
		 SET previous_holder_kind = holder_kind, previous_holder_id = holder_id,
		     holder_kind = $4, holder_id = $5,
		     transferred_at = $6, expected_return_date = $7, notes = $8, updated_at = $6
		 WHERE document_id = $1 AND status = 'checked_out'
		   AND holder_kind = $2 AND holder_id = $3
		 RETURNING `+custodyColumns,
		p.DocumentID, fromKind, fromID, toKind, toID, p.At, p.ExpectedReturnDate, p.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHolderMismatch
		}
		return nil, fmt.Errorf("custodyRepo.Transfer: %w", err)
	}
	return row.toDomain(), nil
}

// Reset returns a checked-out row to the state of a freshly registered document.
func (r *custodyRepo) Reset(ctx context.Context, recordID int64, expected domain.Holder, at time.Time) error {
	kind, id := holderArgs(expected)
	result, err := r.db.ExecContext(ctx,
		`UPDATE custody_records
		 SET status = 'available', holder_kind = NULL, holder_id = NULL,
		     previous_holder_kind = NULL, previous_holder_id = NULL,
		     checked_out_at = NULL, checked_in_at = NULL, transferred_at = NULL,
		     expected_return_date = NULL, notes = '', last_entry_id = NULL, updated_at = $4
		 WHERE id = $1 AND status = 'checked_out' AND holder_kind = $2 AND holder_id = $3`,
		recordID, kind, id, at)
	if err != nil {
		return fmt.Errorf("custodyRepo.Reset: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrHolderMismatch
	}
	return nil
}

func (r *custodyRepo) SetLastEntry(ctx context.Context, recordID int64, entryID *int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE custody_records SET last_entry_id = $2 WHERE id = $1`,
		recordID, entryID)
	if err != nil {
		return fmt.Errorf("custodyRepo.SetLastEntry: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *custodyRepo) ListHeldBy(ctx context.Context, holder domain.Holder) ([]domain.CustodyRecord, error) {
	kind, id := holderArgs(holder)
	var rows []custodyRow
	err := sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT `+custodyColumns+` FROM custody_records
		 WHERE status = 'checked_out' AND holder_kind = $1 AND holder_id = $2
		 ORDER BY updated_at DESC, id DESC`,
		kind, id)
	if err != nil {
		return nil, fmt.Errorf("custodyRepo.ListHeldBy: %w", err)
	}
	return toDomainRecords(rows), nil
}

func (r *custodyRepo) ListOverdue(ctx context.Context, asOf time.Time, offset, limit int) ([]domain.CustodyRecord, int, error) {
	var total int
	err := sqlx.GetContext(ctx, r.db, &total,
		`SELECT COUNT(*) FROM custody_records
		 WHERE status = 'checked_out' AND expected_return_date < $1`,
		asOf)
	if err != nil {
		return nil, 0, fmt.Errorf("custodyRepo.ListOverdue count: %w", err)
	}

	var rows []custodyRow
	err = sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT `+custodyColumns+` FROM custody_records
		 WHERE status = 'checked_out' AND expected_return_date < $1
		 ORDER BY expected_return_date ASC, id ASC
		 LIMIT $2 OFFSET $3`,
		asOf, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("custodyRepo.ListOverdue: %w", err)
	}
	return toDomainRecords(rows), total, nil
}

func toDomainRecords(rows []custodyRow) []domain.CustodyRecord {
	records := make([]domain.CustodyRecord, 0, len(rows))
	for i := range rows {
		records = append(records, *rows[i].toDomain())
	}
	return records
}
