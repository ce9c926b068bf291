// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, mongo, memory) inside this directory.
package repository

import (
	"context"
	"errors"

	"pdfvault/internal/model"
)

// ErrNotFound is returned when no document record has the requested id.
var ErrNotFound = errors.New("repository: document not found")

// DocumentRepository defines data access for document records only.
// Implementations hold no business logic.
type DocumentRepository interface {
	// Insert stores a new record. The id and creation timestamp are assigned by
	// the store; the returned document carries both.
	Insert(ctx context.Context, filename, storagePath string, size int64) (*model.Document, error)

	// ListAll returns every record, newest first (created_at DESC, id DESC).
	ListAll(ctx context.Context) ([]model.Document, error)

	// FindByID returns a record by id, or ErrNotFound.
	FindByID(ctx context.Context, id int64) (*model.Document, error)

	// Delete removes a record by id. It returns ErrNotFound if no such record exists at call time.
	Delete(ctx context.Context, id int64) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}
