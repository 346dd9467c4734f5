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

const historyColumns = `id, document_id, custody_record_id, from_user, from_agent, from_client_name,
	to_user, to_agent, to_client_id, to_client_name, transfer_type, performed_by,
	transferred_at, returned_at, notes, return_notes, expected_return_date`

type transferHistoryRepo struct {
	db sqlx.ExtContext
}

// NewTransferHistoryRepo creates a PostgreSQL-backed TransferHistoryRepository.
func NewTransferHistoryRepo(db sqlx.ExtContext) port.TransferHistoryRepository {
	return &transferHistoryRepo{db: db}
}

func (r *transferHistoryRepo) Create(ctx context.Context, entry *domain.TransferHistoryEntry) error {
	if entry.TransferredAt.IsZero() {
		entry.TransferredAt = time.Now().UTC()
	}
	err := sqlx.GetContext(ctx, r.db, &entry.ID,
		`INSERT INTO transfer_history (document_id, custody_record_id, from_user, from_agent,
			from_client_name, to_user, to_agent, to_client_id, to_client_name, transfer_type,
			performed_by, transferred_at, notes, expected_return_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id`,
		entry.DocumentID, entry.CustodyRecordID, entry.FromUser, entry.FromAgent,
		entry.FromClientName, entry.ToUser, entry.ToAgent, entry.ToClientID, entry.ToClientName,
		entry.TransferType, entry.PerformedBy, entry.TransferredAt, entry.Notes, entry.ExpectedReturnDate)
	if err != nil {
		return fmt.Errorf("transferHistoryRepo.Create: %w", err)
	}
	return nil
}

func (r *transferHistoryRepo) GetByID(ctx context.Context, entryID int64) (*domain.TransferHistoryEntry, error) {
	var entry domain.TransferHistoryEntry
	err := sqlx.GetContext(ctx, r.db, &entry,
		`SELECT `+historyColumns+` FROM transfer_history WHERE id = $1`, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("transferHistoryRepo.GetByID: %w", err)
	}
	return &entry, nil
}

// MarkReturned closes an open entry and records who closed it. An entry that is
// already closed or gone yields domain.ErrNotFound.
func (r *transferHistoryRepo) MarkReturned(ctx context.Context, entryID int64, at time.Time, notes string, performedBy int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE transfer_history
		 SET returned_at = $2, return_notes = $3, performed_by = $4
		 WHERE id = $1 AND returned_at IS NULL`,
		entryID, at, notes, performedBy)
	if err != nil {
		return fmt.Errorf("transferHistoryRepo.MarkReturned: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: no open history entry %d", domain.ErrNotFound, entryID)
	}
	return nil
}

// CloseEntry closes an open entry and leaves performed_by as recorded.
func (r *transferHistoryRepo) CloseEntry(ctx context.Context, entryID int64, at time.Time, notes string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE transfer_history
		 SET returned_at = $2, return_notes = $3
		 WHERE id = $1 AND returned_at IS NULL`,
		entryID, at, notes)
	if err != nil {
		return fmt.Errorf("transferHistoryRepo.CloseEntry: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: no open history entry %d", domain.ErrNotFound, entryID)
	}
	return nil
}

func (r *transferHistoryRepo) FindOpenForUser(ctx context.Context, documentID, userID int64) (*domain.TransferHistoryEntry, error) {
	var entry domain.TransferHistoryEntry
	err := sqlx.GetContext(ctx, r.db, &entry,
		`SELECT `+historyColumns+` FROM transfer_history
		 WHERE document_id = $1 AND to_user = $2 AND returned_at IS NULL
		 ORDER BY transferred_at DESC, id DESC
		 LIMIT 1`,
		documentID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("transferHistoryRepo.FindOpenForUser: %w", err)
	}
	return &entry, nil
}

func (r *transferHistoryRepo) LatestForDocument(ctx context.Context, documentID int64) (*domain.TransferHistoryEntry, error) {
	var entry domain.TransferHistoryEntry
	err := sqlx.GetContext(ctx, r.db, &entry,
		`SELECT `+historyColumns+` FROM transfer_history
		 WHERE document_id = $1
		 ORDER BY transferred_at DESC, id DESC
		 LIMIT 1`,
		documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("transferHistoryRepo.LatestForDocument: %w", err)
	}
	return &entry, nil
}

func (r *transferHistoryRepo) Delete(ctx context.Context, entryID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transfer_history WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("transferHistoryRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *transferHistoryRepo) ListByDocument(ctx context.Context, documentID int64, offset, limit int) ([]domain.TransferHistoryEntry, int, error) {
	var total int
	err := sqlx.GetContext(ctx, r.db, &total,
		`SELECT COUNT(*) FROM transfer_history WHERE document_id = $1`, documentID)
	if err != nil {
		return nil, 0, fmt.Errorf("transferHistoryRepo.ListByDocument count: %w", err)
	}

	entries := []domain.TransferHistoryEntry{}
	err = sqlx.SelectContext(ctx, r.db, &entries,
		`SELECT `+historyColumns+` FROM transfer_history
		 WHERE document_id = $1
		 ORDER BY transferred_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		documentID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("transferHistoryRepo.ListByDocument: %w", err)
	}
	return entries, total, nil
}

// ListAllByDocument returns the full trail oldest first, for exports.
func (r *transferHistoryRepo) ListAllByDocument(ctx context.Context, documentID int64) ([]domain.TransferHistoryEntry, error) {
	entries := []domain.TransferHistoryEntry{}
	err := sqlx.SelectContext(ctx, r.db, &entries,
		`SELECT `+historyColumns+` FROM transfer_history
		 WHERE document_id = $1
		 ORDER BY transferred_at ASC, id ASC`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("transferHistoryRepo.ListAllByDocument: %w", err)
	}
	return entries, nil
}
