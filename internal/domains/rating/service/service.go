package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	bookmodel "booklib-backend/internal/domains/book/model"
	bookrepo "booklib-backend/internal/domains/book/repository"
	"booklib-backend/internal/domains/rating/model"
	"booklib-backend/internal/domains/rating/repository"
	"booklib-backend/internal/stats"
	"booklib-backend/pkg/cache"
	"booklib-backend/pkg/logger"
)

// StatsCoordinator is the slice of the write coordinator this service
// needs; *stats.Coordinator satisfies it.
type StatsCoordinator interface {
	Execute(ctx context.Context, target stats.Target, mutate stats.MutateFunc) error
}

// errNoActiveRating aborts the unrate transaction when there is nothing to
// soft-delete; the service turns it into a no-op.
var errNoActiveRating = errors.New("no active rating")

type ratingService struct {
	ratingRepo  repository.RatingRepository
	bookRepo    bookrepo.BookRepository
	coordinator StatsCoordinator
	cache       cache.Cache
}

func NewRatingService(
	ratingRepo repository.RatingRepository,
	bookRepo bookrepo.BookRepository,
	coordinator StatsCoordinator,
	c cache.Cache,
) ServiceInterface {
	return &ratingService{
		ratingRepo:  ratingRepo,
		bookRepo:    bookRepo,
		coordinator: coordinator,
		cache:       c,
	}
}

func (s *ratingService) Rate(
	ctx context.Context,
	userID, bookID uuid.UUID,
	req model.RateRequest,
) (*model.RateResponse, error) {
	// Validation rejects before any transaction opens.
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.bookRepo.Exists(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to check book: %w", err)
	}
	if !exists {
		return nil, bookmodel.ErrBookNotFound
	}

	var rating *model.Rating
	var created bool

	upsert := func() error {
		return s.coordinator.Execute(ctx, stats.RatingTarget(bookID), func(tx pgx.Tx) error {
			existing, err := s.ratingRepo.GetByUserAndBook(ctx, tx, userID, bookID)
			switch {
			case err == nil:
				// Update in place; a soft-deleted row is reactivated and
				// reported as created.
				prev := existing.Stars
				existing.PreviousStars = &prev
				existing.Stars = req.Stars
				existing.ReviewText = req.ReviewText
				created = !existing.IsActive
				existing.IsActive = true
				if err := s.ratingRepo.Update(ctx, tx, existing); err != nil {
					return err
				}
				rating = existing
				return nil

			case errors.Is(err, model.ErrRatingNotFound):
				now := time.Now()
				rating = &model.Rating{
					ID:         uuid.New(),
					UserID:     userID,
					BookID:     bookID,
					Stars:      req.Stars,
					ReviewText: req.ReviewText,
					IsActive:   true,
					CreatedAt:  now,
					UpdatedAt:  now,
				}
				created = true
				return s.ratingRepo.Create(ctx, tx, rating)

			default:
				return err
			}
		})
	}

	err = upsert()
	if errors.Is(err, model.ErrAlreadyRated) {
		// Two first-time ratings from the same user raced the unique pair
		// and this transaction lost; the winner's row is committed now, so
		// a rerun lands on the update path.
		err = upsert()
	}
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, bookID)
	return &model.RateResponse{Rating: rating, Created: created}, nil
}

func (s *ratingService) Unrate(ctx context.Context, userID, bookID uuid.UUID) error {
	err := s.coordinator.Execute(ctx, stats.RatingTarget(bookID), func(tx pgx.Tx) error {
		existing, err := s.ratingRepo.GetByUserAndBook(ctx, tx, userID, bookID)
		if errors.Is(err, model.ErrRatingNotFound) {
			return errNoActiveRating
		}
		if err != nil {
			return err
		}
		if !existing.IsActive {
			return errNoActiveRating
		}

		prev := existing.Stars
		existing.PreviousStars = &prev
		existing.IsActive = false
		return s.ratingRepo.Update(ctx, tx, existing)
	})

	if errors.Is(err, errNoActiveRating) {
		// Nothing to delete: not an error.
		return nil
	}
	if err != nil {
		return err
	}

	s.invalidateStats(ctx, bookID)
	return nil
}

func (s *ratingService) ListBookRatings(
	ctx context.Context,
	bookID uuid.UUID,
	page, limit int,
) ([]*model.Rating, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.ratingRepo.ListByBook(ctx, bookID, page, limit)
}

func (s *ratingService) invalidateStats(ctx context.Context, bookID uuid.UUID) {
	if err := s.cache.Delete(ctx, bookmodel.StatsCacheKey(bookID)); err != nil {
		logger.Warn("failed to invalidate stats cache", map[string]interface{}{
			"book_id": bookID,
			"error":   err.Error(),
		})
	}
}
