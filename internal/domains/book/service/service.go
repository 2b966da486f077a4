package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"booklib-backend/internal/domains/book/model"
	"booklib-backend/internal/domains/book/repository"
	"booklib-backend/pkg/cache"
	"booklib-backend/pkg/logger"
)

type bookService struct {
	bookRepo repository.BookRepository
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewBookService(bookRepo repository.BookRepository, c cache.Cache, cacheTTL time.Duration) ServiceInterface {
	return &bookService{
		bookRepo: bookRepo,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

func (s *bookService) GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if err == model.ErrBookNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

// GetStats reads the denormalized columns, cache-aside. Writers delete the
// key after commit; a read racing that delete can re-fill the cache with a
// pre-commit snapshot, so the TTL is the upper bound on how long such an
// entry can survive. Keep STATS_CACHE_TTL short.
func (s *bookService) GetStats(ctx context.Context, id uuid.UUID) (*model.Stats, error) {
	key := model.StatsCacheKey(id)

	var cached model.Stats
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		// Cache trouble is not fatal for a read; fall through to the DB.
		logger.Warn("stats cache read failed", map[string]interface{}{"book_id": id, "error": err.Error()})
	}
	if found {
		return &cached, nil
	}

	stats, err := s.bookRepo.GetStats(ctx, id)
	if err != nil {
		if err == model.ErrBookNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	if err := s.cache.Set(ctx, key, stats, s.cacheTTL); err != nil {
		logger.Warn("stats cache write failed", map[string]interface{}{"book_id": id, "error": err.Error()})
	}

	return stats, nil
}

func (s *bookService) ListBooks(ctx context.Context, search string, page, limit int) ([]*model.Book, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.bookRepo.List(ctx, search, page, limit)
}
