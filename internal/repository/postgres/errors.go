package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"papertrail/internal/domain"
)

// SQLSTATE codes the custody repositories react to.
const (
	pgForeignKeyViolation    = "23503"
	pgUniqueViolation        = "23505"
	pgCheckViolation         = "23514"
	pgSerializationFailure   = "40001"
	pgDeadlockDetected       = "40P01"
	pgLockNotAvailable       = "55P03"
	pgQueryCanceled          = "57014"
	pgAdminShutdown          = "57P01"
	pgCannotConnectNow       = "57P03"
	pgConnectionDoesNotExist = "08003"
	pgConnectionFailure      = "08006"
)

// classify turns an error escaping a repository or transaction into one of the
// domain error categories. Domain errors pass through untouched.
func classify(err error) error {
	if err == nil || domain.IsDomainError(err) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: transaction timed out: %w", domain.ErrPersistence, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: transaction canceled: %w", domain.ErrPersistence, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			// The document row vanished between the registry check and the write.
			return fmt.Errorf("%w (%s)", domain.ErrDocumentNotFound, pgErr.ConstraintName)
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: concurrent update, retry (%s): %w", domain.ErrPersistence, pgErr.Code, err)
		case pgLockNotAvailable, pgQueryCanceled:
			return fmt.Errorf("%w: lock or statement timeout (%s): %w", domain.ErrPersistence, pgErr.Code, err)
		case pgAdminShutdown, pgCannotConnectNow, pgConnectionFailure, pgConnectionDoesNotExist:
			return fmt.Errorf("%w: database unavailable (%s): %w", domain.ErrPersistence, pgErr.Code, err)
		case pgCheckViolation, pgUniqueViolation:
			return fmt.Errorf("%w: custody invariant rejected by database (%s): %w", domain.ErrPersistence, pgErr.ConstraintName, err)
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
}
