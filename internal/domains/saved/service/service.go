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
	"booklib-backend/internal/domains/saved/model"
	"booklib-backend/internal/domains/saved/repository"
	"booklib-backend/internal/stats"
	"booklib-backend/pkg/cache"
	"booklib-backend/pkg/logger"
)

// StatsCoordinator is the slice of the write coordinator this service
// needs; *stats.Coordinator satisfies it.
type StatsCoordinator interface {
	Execute(ctx context.Context, target stats.Target, mutate stats.MutateFunc) error
}

// errNoActiveSave aborts the unsave transaction when there is nothing to
// soft-delete; the service turns it into a no-op.
var errNoActiveSave = errors.New("no active save")

type savedService struct {
	savedRepo   repository.SavedRepository
	bookRepo    bookrepo.BookRepository
	coordinator StatsCoordinator
	cache       cache.Cache
}

func NewSavedService(
	savedRepo repository.SavedRepository,
	bookRepo bookrepo.BookRepository,
	coordinator StatsCoordinator,
	c cache.Cache,
) SavedService {
	return &savedService{
		savedRepo:   savedRepo,
		bookRepo:    bookRepo,
		coordinator: coordinator,
		cache:       c,
	}
}

func (s *savedService) Save(
	ctx context.Context,
	userID, bookID uuid.UUID,
	req *model.SaveRequest,
) (*model.SavedBook, error) {
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

	var saved *model.SavedBook

	err = s.coordinator.Execute(ctx, stats.SaveTarget(bookID), func(tx pgx.Tx) error {
		existing, err := s.savedRepo.GetByUserAndBook(ctx, tx, userID, bookID)
		switch {
		case err == nil:
			if existing.IsActive {
				return model.NewAlreadySavedError()
			}
			// One row per (user, book) ever; unsave-then-save reactivates it.
			existing.IsActive = true
			existing.Status = req.Status
			if err := s.savedRepo.Update(ctx, tx, existing); err != nil {
				return err
			}
			saved = existing
			return nil

		case errors.Is(err, model.ErrSaveNotFound):
			now := time.Now()
			saved = &model.SavedBook{
				ID:        uuid.New(),
				UserID:    userID,
				BookID:    bookID,
				Status:    req.Status,
				IsActive:  true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			return s.savedRepo.Create(ctx, tx, saved)

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, bookID)
	return saved, nil
}

// UpdateSaveStatus moves a saved book between shelves. The status never
// feeds total_saves, so this skips the coordinator entirely.
func (s *savedService) UpdateSaveStatus(
	ctx context.Context,
	userID, bookID uuid.UUID,
	req *model.UpdateSaveStatusRequest,
) (*model.SavedBook, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.savedRepo.GetByUserAndBook(ctx, nil, userID, bookID)
	if err != nil {
		return nil, err
	}
	if !existing.IsActive {
		return nil, model.ErrSaveNotFound
	}

	existing.Status = req.Status
	if err := s.savedRepo.Update(ctx, nil, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *savedService) Unsave(ctx context.Context, userID, bookID uuid.UUID) error {
	err := s.coordinator.Execute(ctx, stats.SaveTarget(bookID), func(tx pgx.Tx) error {
		existing, err := s.savedRepo.GetByUserAndBook(ctx, tx, userID, bookID)
		if errors.Is(err, model.ErrSaveNotFound) {
			return errNoActiveSave
		}
		if err != nil {
			return err
		}
		if !existing.IsActive {
			return errNoActiveSave
		}

		existing.IsActive = false
		return s.savedRepo.Update(ctx, tx, existing)
	})

	if errors.Is(err, errNoActiveSave) {
		// Nothing to remove: not an error.
		return nil
	}
	if err != nil {
		return err
	}

	s.invalidateStats(ctx, bookID)
	return nil
}

func (s *savedService) ListSaved(
	ctx context.Context,
	userID uuid.UUID,
	page, limit int,
) ([]*model.SavedBook, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.savedRepo.ListByUser(ctx, userID, page, limit)
}

func (s *savedService) invalidateStats(ctx context.Context, bookID uuid.UUID) {
	if err := s.cache.Delete(ctx, bookmodel.StatsCacheKey(bookID)); err != nil {
		logger.Warn("failed to invalidate stats cache", map[string]interface{}{
			"book_id": bookID,
			"error":   err.Error(),
		})
	}
}
