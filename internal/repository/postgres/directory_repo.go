package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"papertrail/internal/domain"
	"papertrail/internal/port"
)

type directoryRepo struct {
	db *sqlx.DB
}

// NewDirectoryRepo creates a PostgreSQL-backed Directory over the users and
// clients tables.
func NewDirectoryRepo(db *sqlx.DB) port.Directory {
	return &directoryRepo{db: db}
}

// IsAdmin reports false for unknown or deactivated users.
func (r *directoryRepo) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var isAdmin bool
	err := r.db.GetContext(ctx, &isAdmin,
		"SELECT role = 'admin' AND is_active FROM users WHERE id = $1", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("directoryRepo.IsAdmin: %w", err)
	}
	return isAdmin, nil
}

func (r *directoryRepo) ResolveClientName(ctx context.Context, clientID int64) (string, error) {
	var name string
	err := r.db.GetContext(ctx, &name, "SELECT name FROM clients WHERE id = $1", clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrClientNotFound
		}
		return "", fmt.Errorf("directoryRepo.ResolveClientName: %w", err)
	}
	return name, nil
}

func (r *directoryRepo) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		"SELECT id, full_name, email, role, is_active FROM users WHERE id = $1", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("directoryRepo.GetUser: %w", err)
	}
	return &user, nil
}
