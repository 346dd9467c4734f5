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

type documentRegistry struct {
	db *sqlx.DB
}

// NewDocumentRegistry creates a PostgreSQL-backed DocumentRegistry.
func NewDocumentRegistry(db *sqlx.DB) port.DocumentRegistry {
	return &documentRegistry{db: db}
}

func (r *documentRegistry) GetDocument(ctx context.Context, documentID int64) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT id, is_active, uploaded_by FROM documents WHERE id = $1", documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRegistry.GetDocument: %w", err)
	}
	return &doc, nil
}
