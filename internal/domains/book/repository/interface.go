package repository

import (
	"context"

	"github.com/google/uuid"

	"booklib-backend/internal/domains/book/model"
)

// BookRepository is the read-only catalog access the engagement core needs.
// Books are created and edited elsewhere; this service only reads them and
// (through the stats coordinator, never here) updates their aggregates.
type BookRepository interface {
	// GetByID gets a book with its current aggregates.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)

	// Exists reports whether the book exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// GetStats reads the denormalized aggregate columns.
	GetStats(ctx context.Context, id uuid.UUID) (*model.Stats, error)

	// List pages through the catalog, optionally filtered by a title/author
	// substring.
	List(ctx context.Context, search string, page, limit int) ([]*model.Book, int, error)
}
