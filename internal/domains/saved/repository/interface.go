package repository

import (
	"context"

	"github.com/google/uuid"

	"booklib-backend/internal/domains/saved/model"
	"booklib-backend/pkg/database"
)

// SavedRepository persists saved-book rows. Mutations take a
// database.Querier so they can run inside a coordinator transaction.
type SavedRepository interface {
	GetByUserAndBook(ctx context.Context, q database.Querier, userID, bookID uuid.UUID) (*model.SavedBook, error)
	Create(ctx context.Context, q database.Querier, saved *model.SavedBook) error
	Update(ctx context.Context, q database.Querier, saved *model.SavedBook) error
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.SavedBook, int, error)
}
