// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/Gennadiyev/xplit-pay/internal/models"
)

// Store defines the persistence operations for parsed documents and API
// users. The abstraction keeps the service layer independent of the backing
// database.
type Store interface {
	// CreateDocument persists a parsed document. The ID and CreatedAt
	// fields are populated by the store when unset.
	CreateDocument(ctx context.Context, doc *models.Document) error

	// GetDocument retrieves a complete document by its ID, entries, splits
	// and extra payments included. Returns an error if not found.
	GetDocument(ctx context.Context, documentID string) (*models.Document, error)

	// ListDocuments returns metadata (no entries, no extra payments) for
	// every document owned by the given user, newest first.
	ListDocuments(ctx context.Context, ownerID string) ([]*models.Document, error)

	// CreateUser inserts a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) when no
	// such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns (nil, nil) when no such
	// user exists.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
