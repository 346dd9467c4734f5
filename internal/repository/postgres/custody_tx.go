package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"papertrail/internal/port"
)

const defaultCustodyTxTimeout = 5 * time.Second

type custodyTx struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewCustodyTx creates a PostgreSQL-backed CustodyTx. A zero timeout falls
// back to five seconds.
func NewCustodyTx(db *sqlx.DB, timeout time.Duration) port.CustodyTx {
	return &custodyTx{db: db, timeout: timeout}
}

func (t *custodyTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores port.CustodyStores) error) error {
	if err := ctx.Err(); err != nil {
		return classify(fmt.Errorf("custodyTx: aborted before begin: %w", err))
	}

	timeout := t.timeout
	if timeout <= 0 {
		timeout = defaultCustodyTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("custodyTx.Begin: %w", err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stores := port.CustodyStores{
		Custody: NewCustodyRepo(tx),
		History: NewTransferHistoryRepo(tx),
	}
	if err := fn(ctx, stores); err != nil {
		return classify(err)
	}
	if err := ctx.Err(); err != nil {
		return classify(fmt.Errorf("custodyTx: expired before commit: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("custodyTx.Commit: %w", err))
	}
	return nil
}
