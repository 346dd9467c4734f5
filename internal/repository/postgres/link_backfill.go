package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// LinkStats reports what a link backfill changed.
type LinkStats struct {
	EntriesLinked  int64
	RecordsLinked  int64
	RecordsNoMatch int64
}

// BackfillLinks attaches history rows written before entries were linked to
// their ledger rows, then points each checked-out ledger row without a
// last_entry_id at the newest entry that handed the copy to its current holder.
// Ledger rows are processed in id order, batchSize at a time.
func BackfillLinks(ctx context.Context, db *sqlx.DB, batchSize int) (LinkStats, error) {
	var stats LinkStats
	if batchSize <= 0 {
		batchSize = 100
	}

	result, err := db.ExecContext(ctx,
		`UPDATE transfer_history th
		 SET custody_record_id = cr.id
		 FROM custody_records cr
		 WHERE th.document_id = cr.document_id AND th.custody_record_id IS NULL`)
	if err != nil {
		return stats, fmt.Errorf("backfill.LinkEntries: %w", err)
	}
	stats.EntriesLinked, _ = result.RowsAffected()

	var cursor int64
	for {
		var rows []struct {
			ID          int64         `db:"id"`
			LastEntryID sql.NullInt64 `db:"last_entry_id"`
		}
		err := sqlx.SelectContext(ctx, db, &rows,
			`UPDATE custody_records cr
			 SET last_entry_id = (
			     SELECT th.id FROM transfer_history th
			     WHERE th.document_id = cr.document_id
			       AND th.transfer_type <> 'rolled_back'
			       AND ((cr.holder_kind = 'user' AND th.to_user = cr.holder_id)
			         OR (cr.holder_kind = 'agent' AND th.to_agent = cr.holder_id)
			         OR (cr.holder_kind = 'client' AND th.to_client_id = cr.holder_id))
			     ORDER BY th.transferred_at DESC, th.id DESC
			     LIMIT 1)
			 WHERE cr.id IN (
			     SELECT id FROM custody_records
			     WHERE status = 'checked_out' AND last_entry_id IS NULL AND id > $1
			     ORDER BY id
			     LIMIT $2)
			 RETURNING cr.id, cr.last_entry_id`,
			cursor, batchSize)
		if err != nil {
			return stats, fmt.Errorf("backfill.LinkRecords after %d: %w", cursor, err)
		}
		if len(rows) == 0 {
			return stats, nil
		}
		for _, r := range rows {
			if r.ID > cursor {
				cursor = r.ID
			}
			if r.LastEntryID.Valid {
				stats.RecordsLinked++
			} else {
				stats.RecordsNoMatch++
			}
		}
	}
}
