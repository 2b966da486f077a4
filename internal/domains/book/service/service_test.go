package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklib-backend/internal/domains/book/model"
)

type fakeBookRepo struct {
	stats     map[uuid.UUID]*model.Stats
	statCalls int
}

func (f *fakeBookRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	if _, ok := f.stats[id]; !ok {
		return nil, model.ErrBookNotFound
	}
	return &model.Book{ID: id}, nil
}

func (f *fakeBookRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.stats[id]
	return ok, nil
}

func (f *fakeBookRepo) GetStats(ctx context.Context, id uuid.UUID) (*model.Stats, error) {
	f.statCalls++
	s, ok := f.stats[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeBookRepo) List(ctx context.Context, search string, page, limit int) ([]*model.Book, int, error) {
	return nil, 0, nil
}

// memoryCache is a map-backed cache good enough for read-path tests.
type memoryCache struct {
	stats   map[string]model.Stats
	getErr  error
	setKeys []string
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	s, ok := m.stats[key]
	if !ok {
		return false, nil
	}
	*(dest.(*model.Stats)) = s
	return true, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.setKeys = append(m.setKeys, key)
	if m.stats == nil {
		m.stats = make(map[string]model.Stats)
	}
	m.stats[key] = *(value.(*model.Stats))
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.stats, k)
	}
	return nil
}

func (m *memoryCache) Ping(ctx context.Context) error {
	return nil
}

func TestGetStats_CacheMissReadsAndFills(t *testing.T) {
	bookID := uuid.New()
	avg := decimal.RequireFromString("4.25")
	repo := &fakeBookRepo{stats: map[uuid.UUID]*model.Stats{
		bookID: {BookID: bookID, AvgRating: &avg, TotalRatings: 4, TotalSaves: 2, TotalComments: 1},
	}}
	c := &memoryCache{}
	svc := NewBookService(repo, c, time.Minute)

	stats, err := svc.GetStats(context.Background(), bookID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalRatings)
	assert.Contains(t, c.setKeys, model.StatsCacheKey(bookID))

	// Second read is served from cache.
	_, err = svc.GetStats(context.Background(), bookID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.statCalls)
}

func TestGetStats_CacheErrorFallsThroughToDB(t *testing.T) {
	bookID := uuid.New()
	repo := &fakeBookRepo{stats: map[uuid.UUID]*model.Stats{
		bookID: {BookID: bookID, TotalRatings: 1},
	}}
	c := &memoryCache{getErr: errors.New("redis down")}
	svc := NewBookService(repo, c, time.Minute)

	stats, err := svc.GetStats(context.Background(), bookID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalRatings)
	assert.Equal(t, 1, repo.statCalls)
}

func TestGetStats_InvalidationForcesFreshRead(t *testing.T) {
	bookID := uuid.New()
	key := model.StatsCacheKey(bookID)
	repo := &fakeBookRepo{stats: map[uuid.UUID]*model.Stats{
		bookID: {BookID: bookID, TotalRatings: 7},
	}}
	c := &memoryCache{stats: map[string]model.Stats{
		// A pre-commit snapshot left behind by a read racing a writer.
		key: {BookID: bookID, TotalRatings: 6},
	}}
	svc := NewBookService(repo, c, time.Minute)

	stale, err := svc.GetStats(context.Background(), bookID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), stale.TotalRatings, "cached value is served until invalidated or expired")

	// The writer's post-commit invalidation.
	require.NoError(t, c.Delete(context.Background(), key))

	fresh, err := svc.GetStats(context.Background(), bookID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), fresh.TotalRatings)
	assert.Equal(t, 1, repo.statCalls)
}

func TestGetStats_UnknownBook(t *testing.T) {
	repo := &fakeBookRepo{stats: map[uuid.UUID]*model.Stats{}}
	svc := NewBookService(repo, &memoryCache{}, time.Minute)

	_, err := svc.GetStats(context.Background(), uuid.New())
	require.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestListBooks_ClampsPagination(t *testing.T) {
	repo := &fakeBookRepo{stats: map[uuid.UUID]*model.Stats{}}
	svc := NewBookService(repo, &memoryCache{}, time.Minute)

	_, _, err := svc.ListBooks(context.Background(), "", -3, 9999)
	require.NoError(t, err)
}
