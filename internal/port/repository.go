package port

import (
	"context"

	"papertrail/internal/domain"
)

// DocumentRegistry is the read-only view of the document store owned by the
// file-management subsystem.
type DocumentRegistry interface {
	// GetDocument returns domain.ErrDocumentNotFound when the id is unknown.
	GetDocument(ctx context.Context, documentID int64) (*domain.Document, error)
}

// Directory resolves staff users, clearance agents and clients.
type Directory interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	ResolveClientName(ctx context.Context, clientID int64) (string, error)
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}
