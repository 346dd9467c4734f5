package postgres_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrail/internal/domain"
	"papertrail/internal/port"
	"papertrail/internal/repository/postgres"
)

// stallingConnector hands out connections whose statements block until their
// context is done, the way a statement queued behind a row lock does.
type stallingConnector struct {
	maxStall time.Duration
}

func (c stallingConnector) Connect(context.Context) (driver.Conn, error) {
	return &stallingConn{maxStall: c.maxStall}, nil
}

func (c stallingConnector) Driver() driver.Driver { return stallingDriver{} }

type stallingDriver struct{}

func (stallingDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("use the connector")
}

type stallingConn struct {
	maxStall time.Duration
}

func (c *stallingConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *stallingConn) Close() error              { return nil }
func (c *stallingConn) Begin() (driver.Tx, error) { return stallingTx{}, nil }

func (c *stallingConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return stallingTx{}, nil
}

func (c *stallingConn) ExecContext(ctx context.Context, _ string, _ []driver.NamedValue) (driver.Result, error) {
	if err := c.stall(ctx); err != nil {
		return nil, err
	}
	return driver.RowsAffected(1), nil
}

func (c *stallingConn) QueryContext(ctx context.Context, _ string, _ []driver.NamedValue) (driver.Rows, error) {
	if err := c.stall(ctx); err != nil {
		return nil, err
	}
	return nil, errors.New("query not supported")
}

func (c *stallingConn) stall(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.maxStall):
		return nil
	}
}

type stallingTx struct{}

func (stallingTx) Commit() error   { return nil }
func (stallingTx) Rollback() error { return nil }

func newStallingDB(maxStall time.Duration) *sqlx.DB {
	return sqlx.NewDb(sql.OpenDB(stallingConnector{maxStall: maxStall}), "pgx")
}

func TestCustodyTx_StatementsObserveTxTimeout(t *testing.T) {
	db := newStallingDB(3 * time.Second)
	defer db.Close()

	txRunner := postgres.NewCustodyTx(db, 200*time.Millisecond)

	start := time.Now()
	err := txRunner.RunInTx(context.Background(), func(ctx context.Context, stores port.CustodyStores) error {
		return stores.Custody.EnsureRecord(ctx, 1)
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestCustodyTx_CallerDeadlineWins(t *testing.T) {
	db := newStallingDB(3 * time.Second)
	defer db.Close()

	txRunner := postgres.NewCustodyTx(db, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := txRunner.RunInTx(ctx, func(ctx context.Context, stores port.CustodyStores) error {
		return stores.Custody.EnsureRecord(ctx, 1)
	})

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCustodyTx_CommitsWhenCallbackSucceeds(t *testing.T) {
	db := newStallingDB(10 * time.Millisecond)
	defer db.Close()

	txRunner := postgres.NewCustodyTx(db, time.Second)
	err := txRunner.RunInTx(context.Background(), func(ctx context.Context, stores port.CustodyStores) error {
		return stores.Custody.EnsureRecord(ctx, 1)
	})

	assert.NoError(t, err)
}

func TestCustodyTx_CallbackErrorIsClassified(t *testing.T) {
	db := newStallingDB(10 * time.Millisecond)
	defer db.Close()

	txRunner := postgres.NewCustodyTx(db, time.Second)
	err := txRunner.RunInTx(context.Background(), func(context.Context, port.CustodyStores) error {
		return domain.ErrAlreadyCheckedOut
	})

	assert.ErrorIs(t, err, domain.ErrAlreadyCheckedOut)
}
