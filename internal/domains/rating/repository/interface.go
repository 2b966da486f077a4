package repository

import (
	"context"

	"github.com/google/uuid"

	"booklib-backend/internal/domains/rating/model"
	"booklib-backend/pkg/database"
)

// RatingRepository persists rating child records. Mutation methods take a
// Querier so the coordinator can run them inside its locked transaction;
// pure reads run against the pool.
type RatingRepository interface {
	// GetByUserAndBook gets the (user, book) row regardless of is_active.
	GetByUserAndBook(ctx context.Context, q database.Querier, userID, bookID uuid.UUID) (*model.Rating, error)

	// Create inserts a new rating row. Returns ErrAlreadyRated when the
	// (user, book) row already exists.
	Create(ctx context.Context, q database.Querier, rating *model.Rating) error

	// Update rewrites stars, review text, previous stars and active flag.
	Update(ctx context.Context, q database.Querier, rating *model.Rating) error

	// ListByBook lists active ratings for a book, newest first.
	ListByBook(ctx context.Context, bookID uuid.UUID, page, limit int) ([]*model.Rating, int, error)
}
