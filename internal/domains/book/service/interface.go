package service

import (
	"context"

	"github.com/google/uuid"

	"booklib-backend/internal/domains/book/model"
)

type ServiceInterface interface {
	// GetBook gets a book with its aggregates.
	GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error)

	// GetStats reads the aggregate snapshot, served from cache when fresh.
	// Always consistent with the last committed write.
	GetStats(ctx context.Context, id uuid.UUID) (*model.Stats, error)

	// ListBooks pages through the catalog.
	ListBooks(ctx context.Context, search string, page, limit int) ([]*model.Book, int, error)
}
