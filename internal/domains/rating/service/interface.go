package service

import (
	"context"

	"github.com/google/uuid"

	"booklib-backend/internal/domains/rating/model"
)

type ServiceInterface interface {
	// Rate is the upsert path: an active rating for (user, book) is updated
	// in place (recording the previous stars), a missing or soft-deleted one
	// is created/reactivated. Returns the persisted rating and whether the
	// caller should treat it as newly created.
	Rate(ctx context.Context, userID, bookID uuid.UUID, req model.RateRequest) (*model.RateResponse, error)

	// Unrate soft-deletes the active rating. No-op (not an error) when the
	// user has no active rating for the book.
	Unrate(ctx context.Context, userID, bookID uuid.UUID) error

	// ListBookRatings lists active ratings for a book.
	ListBookRatings(ctx context.Context, bookID uuid.UUID, page, limit int) ([]*model.Rating, int, error)
}
