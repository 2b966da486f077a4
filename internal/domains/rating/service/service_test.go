package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookmodel "booklib-backend/internal/domains/book/model"
	"booklib-backend/internal/domains/rating/model"
	"booklib-backend/internal/stats"
	"booklib-backend/pkg/database"
)

type fakeRatingRepo struct {
	ratings map[string]*model.Rating

	// raceWith, when set, makes the next Create lose the unique pair
	// constraint to this concurrently committed rating.
	raceWith *model.Rating
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[string]*model.Rating)}
}

func key(userID, bookID uuid.UUID) string {
	return userID.String() + "/" + bookID.String()
}

func (f *fakeRatingRepo) GetByUserAndBook(ctx context.Context, q database.Querier, userID, bookID uuid.UUID) (*model.Rating, error) {
	r, ok := f.ratings[key(userID, bookID)]
	if !ok {
		return nil, model.ErrRatingNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRatingRepo) Create(ctx context.Context, q database.Querier, rating *model.Rating) error {
	if f.raceWith != nil {
		winner := *f.raceWith
		f.ratings[key(winner.UserID, winner.BookID)] = &winner
		f.raceWith = nil
		return model.ErrAlreadyRated
	}
	k := key(rating.UserID, rating.BookID)
	if _, ok := f.ratings[k]; ok {
		return model.ErrAlreadyRated
	}
	copied := *rating
	f.ratings[k] = &copied
	return nil
}

func (f *fakeRatingRepo) Update(ctx context.Context, q database.Querier, rating *model.Rating) error {
	for k, existing := range f.ratings {
		if existing.ID == rating.ID {
			copied := *rating
			f.ratings[k] = &copied
			return nil
		}
	}
	return model.ErrRatingNotFound
}

func (f *fakeRatingRepo) ListByBook(ctx context.Context, bookID uuid.UUID, page, limit int) ([]*model.Rating, int, error) {
	var out []*model.Rating
	for _, r := range f.ratings {
		if r.BookID == bookID && r.IsActive {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

type fakeBookRepo struct {
	existing map[uuid.UUID]bool
}

func (f *fakeBookRepo) GetByID(ctx context.Context, id uuid.UUID) (*bookmodel.Book, error) {
	if !f.existing[id] {
		return nil, bookmodel.ErrBookNotFound
	}
	return &bookmodel.Book{ID: id}, nil
}

func (f *fakeBookRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return f.existing[id], nil
}

func (f *fakeBookRepo) GetStats(ctx context.Context, id uuid.UUID) (*bookmodel.Stats, error) {
	if !f.existing[id] {
		return nil, bookmodel.ErrBookNotFound
	}
	return &bookmodel.Stats{BookID: id}, nil
}

func (f *fakeBookRepo) List(ctx context.Context, search string, page, limit int) ([]*bookmodel.Book, int, error) {
	return nil, 0, nil
}

// fakeCoordinator runs the mutation immediately with a nil transaction;
// repo fakes ignore the Querier anyway.
type fakeCoordinator struct {
	targets []stats.Target
	err     error
}

func (f *fakeCoordinator) Execute(ctx context.Context, target stats.Target, mutate stats.MutateFunc) error {
	f.targets = append(f.targets, target)
	if f.err != nil {
		return f.err
	}
	if mutate != nil {
		return mutate(pgx.Tx(nil))
	}
	return nil
}

type fakeCache struct {
	deleted []string
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

func (f *fakeCache) Ping(ctx context.Context) error {
	return nil
}

func newTestService(bookID uuid.UUID) (ServiceInterface, *fakeRatingRepo, *fakeCoordinator, *fakeCache) {
	repo := newFakeRatingRepo()
	books := &fakeBookRepo{existing: map[uuid.UUID]bool{bookID: true}}
	coord := &fakeCoordinator{}
	c := &fakeCache{}
	return NewRatingService(repo, books, coord, c), repo, coord, c
}

func TestRate_StarsOutOfRange(t *testing.T) {
	bookID := uuid.New()
	svc, _, coord, _ := newTestService(bookID)

	for _, stars := range []int{0, 6, -1} {
		_, err := svc.Rate(context.Background(), uuid.New(), bookID, model.RateRequest{Stars: stars})
		require.ErrorIs(t, err, model.ErrOutOfRange, "stars=%d", stars)
	}

	// Rejected before any write.
	assert.Empty(t, coord.targets)
}

func TestRate_ReviewTooLong(t *testing.T) {
	bookID := uuid.New()
	svc, _, _, _ := newTestService(bookID)

	review := strings.Repeat("x", model.MaxReviewLength+1)
	_, err := svc.Rate(context.Background(), uuid.New(), bookID, model.RateRequest{Stars: 4, ReviewText: &review})
	require.ErrorIs(t, err, model.ErrReviewTooLong)
}

func TestRate_BookMissing(t *testing.T) {
	svc, _, _, _ := newTestService(uuid.New())

	_, err := svc.Rate(context.Background(), uuid.New(), uuid.New(), model.RateRequest{Stars: 4})
	require.ErrorIs(t, err, bookmodel.ErrBookNotFound)
}

func TestRate_CreatesNewRating(t *testing.T) {
	bookID := uuid.New()
	userID := uuid.New()
	svc, repo, coord, c := newTestService(bookID)

	resp, err := svc.Rate(context.Background(), userID, bookID, model.RateRequest{Stars: 5})
	require.NoError(t, err)

	assert.True(t, resp.Created)
	assert.Equal(t, 5, resp.Rating.Stars)
	assert.True(t, resp.Rating.IsActive)

	stored := repo.ratings[key(userID, bookID)]
	require.NotNil(t, stored)
	assert.Equal(t, 5, stored.Stars)

	require.Len(t, coord.targets, 1)
	assert.Equal(t, stats.KindRating, coord.targets[0].Kind)
	assert.Equal(t, bookID, coord.targets[0].BookID)

	assert.Contains(t, c.deleted, bookmodel.StatsCacheKey(bookID))
}

func TestRate_UpdatesExistingInPlace(t *testing.T) {
	bookID := uuid.New()
	userID := uuid.New()
	svc, repo, _, _ := newTestService(bookID)

	first, err := svc.Rate(context.Background(), userID, bookID, model.RateRequest{Stars: 2})
	require.NoError(t, err)

	resp, err := svc.Rate(context.Background(), userID, bookID, model.RateRequest{Stars: 4})
	require.NoError(t, err)

	// Re-rate updates the same row: no second row, not "created".
	assert.False(t, resp.Created)
	assert.Equal(t, first.Rating.ID, resp.Rating.ID)
	assert.Equal(t, 4, resp.Rating.Stars)
	require.NotNil(t, resp.Rating.PreviousStars)
	assert.Equal(t, 2, *resp.Rating.PreviousStars)
	assert.Len(t, repo.ratings, 1)
}

func TestRate_ReactivatesSoftDeleted(t *testing.T) {
	bookID := uuid.New()
	userID := uuid.New()
	svc, repo, _, _ := newTestService(bookID)

	_, err := svc.Rate(context.Background(), userID, bookID, model.RateRequest{Stars: 3})
	require.NoError(t, err)
	require.NoError(t, svc.Unrate(context.Background(), userID, bookID))

	resp, err := svc.Rate(context.Background(), userID, bookID, model.RateRequest{Stars: 5})
	require.NoError(t, err)

	// The soft-deleted row comes back as a fresh rating.
	assert.True(t, resp.Created)
	assert.True(t, resp.Rating.IsActive)
	assert.Len(t, repo.ratings, 1)
}

func TestRate_ConcurrentFirstRatingsConverge(t *testing.T) {
	bookID := uuid.New()
	userID := uuid.New()
	svc, repo, coord, _ := newTestService(bookID)

	// The user's other request commits stars=3 first, so this transaction
	// loses the unique pair constraint on insert.
	repo.raceWith = &model.Rating{
		ID: uuid.New(), UserID: userID, BookID: bookID,
		Stars: 3, IsActive: true,
	}

	resp, err := svc.Rate(context.Background(), userID, bookID, model.RateRequest{Stars: 5})
	require.NoError(t, err, "losing the insert race must not surface an error")

	// The rerun lands on the winner's row and updates it in place.
	assert.False(t, resp.Created)
	assert.Equal(t, 5, resp.Rating.Stars)
	require.NotNil(t, resp.Rating.PreviousStars)
	assert.Equal(t, 3, *resp.Rating.PreviousStars)
	assert.Len(t, repo.ratings, 1)
	assert.Len(t, coord.targets, 2, "one failed attempt plus the rerun")
}

func TestRate_ConflictPropagates(t *testing.T) {
	bookID := uuid.New()
	svc, _, coord, c := newTestService(bookID)
	coord.err = stats.ErrConflict

	_, err := svc.Rate(context.Background(), uuid.New(), bookID, model.RateRequest{Stars: 4})
	require.ErrorIs(t, err, stats.ErrConflict)
	assert.Empty(t, c.deleted)
}

func TestUnrate_SoftDeletes(t *testing.T) {
	bookID := uuid.New()
	userID := uuid.New()
	svc, repo, _, _ := newTestService(bookID)

	_, err := svc.Rate(context.Background(), userID, bookID, model.RateRequest{Stars: 3})
	require.NoError(t, err)

	require.NoError(t, svc.Unrate(context.Background(), userID, bookID))

	stored := repo.ratings[key(userID, bookID)]
	require.NotNil(t, stored, "unrate keeps the row")
	assert.False(t, stored.IsActive)
}

func TestUnrate_NoActiveRatingIsNoOp(t *testing.T) {
	bookID := uuid.New()
	svc, _, _, c := newTestService(bookID)

	err := svc.Unrate(context.Background(), uuid.New(), bookID)
	require.NoError(t, err)
	assert.Empty(t, c.deleted)
}
