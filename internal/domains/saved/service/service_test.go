package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookmodel "booklib-backend/internal/domains/book/model"
	"booklib-backend/internal/domains/saved/model"
	"booklib-backend/internal/stats"
	"booklib-backend/pkg/database"
)

type fakeSavedRepo struct {
	saves map[string]*model.SavedBook
}

func newFakeSavedRepo() *fakeSavedRepo {
	return &fakeSavedRepo{saves: make(map[string]*model.SavedBook)}
}

func key(userID, bookID uuid.UUID) string {
	return userID.String() + "/" + bookID.String()
}

func (f *fakeSavedRepo) GetByUserAndBook(ctx context.Context, q database.Querier, userID, bookID uuid.UUID) (*model.SavedBook, error) {
	s, ok := f.saves[key(userID, bookID)]
	if !ok {
		return nil, model.ErrSaveNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSavedRepo) Create(ctx context.Context, q database.Querier, saved *model.SavedBook) error {
	k := key(saved.UserID, saved.BookID)
	if _, ok := f.saves[k]; ok {
		return model.ErrAlreadySaved
	}
	copied := *saved
	f.saves[k] = &copied
	return nil
}

func (f *fakeSavedRepo) Update(ctx context.Context, q database.Querier, saved *model.SavedBook) error {
	for k, existing := range f.saves {
		if existing.ID == saved.ID {
			copied := *saved
			f.saves[k] = &copied
			return nil
		}
	}
	return model.ErrSaveNotFound
}

func (f *fakeSavedRepo) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.SavedBook, int, error) {
	var out []*model.SavedBook
	for _, s := range f.saves {
		if s.UserID == userID && s.IsActive {
			out = append(out, s)
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
	return &bookmodel.Stats{BookID: id}, nil
}

func (f *fakeBookRepo) List(ctx context.Context, search string, page, limit int) ([]*bookmodel.Book, int, error) {
	return nil, 0, nil
}

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
		return mutate(nil)
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

func newTestService(bookID uuid.UUID) (SavedService, *fakeSavedRepo, *fakeCoordinator, *fakeCache) {
	repo := newFakeSavedRepo()
	books := &fakeBookRepo{existing: map[uuid.UUID]bool{bookID: true}}
	coord := &fakeCoordinator{}
	c := &fakeCache{}
	return NewSavedService(repo, books, coord, c), repo, coord, c
}

func TestSave_DefaultsToWantToRead(t *testing.T) {
	bookID := uuid.New()
	svc, _, coord, c := newTestService(bookID)

	saved, err := svc.Save(context.Background(), uuid.New(), bookID, &model.SaveRequest{})
	require.NoError(t, err)

	assert.Equal(t, model.StatusWantToRead, saved.Status)
	assert.True(t, saved.IsActive)

	require.Len(t, coord.targets, 1)
	assert.Equal(t, stats.KindSave, coord.targets[0].Kind)
	assert.Contains(t, c.deleted, bookmodel.StatsCacheKey(bookID))
}

func TestSave_InvalidStatus(t *testing.T) {
	bookID := uuid.New()
	svc, _, coord, _ := newTestService(bookID)

	_, err := svc.Save(context.Background(), uuid.New(), bookID, &model.SaveRequest{Status: "wishlist"})
	require.ErrorIs(t, err, model.ErrInvalidStatus)
	assert.Empty(t, coord.targets)
}

func TestSave_DuplicateActiveFails(t *testing.T) {
	bookID := uuid.New()
	userID := uuid.New()
	svc, repo, _, _ := newTestService(bookID)

	_, err := svc.Save(context.Background(), userID, bookID, &model.SaveRequest{})
	require.NoError(t, err)

	_, err = svc.Save(context.Background(), userID, bookID, &model.SaveRequest{})
	require.ErrorIs(t, err, model.ErrAlreadySaved)
	assert.Len(t, repo.saves, 1)
}

func TestSave_ReactivatesAfterUnsave(t *testing.T) {
	bookID := uuid.New()
	userID := uuid.New()
	svc, repo, _, _ := newTestService(bookID)

	first, err := svc.Save(context.Background(), userID, bookID, &model.SaveRequest{})
	require.NoError(t, err)
	require.NoError(t, svc.Unsave(context.Background(), userID, bookID))

	again, err := svc.Save(context.Background(), userID, bookID,
		&model.SaveRequest{Status: model.StatusCurrentlyReading})
	require.NoError(t, err)

	// Same row, back to active, with the new shelf.
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.IsActive)
	assert.Equal(t, model.StatusCurrentlyReading, again.Status)
	assert.Len(t, repo.saves, 1)
}

func TestUpdateSaveStatus_DoesNotTouchAggregates(t *testing.T) {
	bookID := uuid.New()
	userID := uuid.New()
	svc, _, coord, _ := newTestService(bookID)

	_, err := svc.Save(context.Background(), userID, bookID, &model.SaveRequest{})
	require.NoError(t, err)
	callsAfterSave := len(coord.targets)

	updated, err := svc.UpdateSaveStatus(context.Background(), userID, bookID,
		&model.UpdateSaveStatusRequest{Status: model.StatusFinished})
	require.NoError(t, err)

	assert.Equal(t, model.StatusFinished, updated.Status)
	// Shelf moves never change total_saves, so no coordinator round-trip.
	assert.Len(t, coord.targets, callsAfterSave)
}

func TestUpdateSaveStatus_MissingSave(t *testing.T) {
	bookID := uuid.New()
	svc, _, _, _ := newTestService(bookID)

	_, err := svc.UpdateSaveStatus(context.Background(), uuid.New(), bookID,
		&model.UpdateSaveStatusRequest{Status: model.StatusFinished})
	require.ErrorIs(t, err, model.ErrSaveNotFound)
}

func TestUnsave_SoftDeletes(t *testing.T) {
	bookID := uuid.New()
	userID := uuid.New()
	svc, repo, _, _ := newTestService(bookID)

	_, err := svc.Save(context.Background(), userID, bookID, &model.SaveRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.Unsave(context.Background(), userID, bookID))

	stored := repo.saves[key(userID, bookID)]
	require.NotNil(t, stored, "unsave keeps the row")
	assert.False(t, stored.IsActive)
}

func TestUnsave_NothingSavedIsNoOp(t *testing.T) {
	bookID := uuid.New()
	svc, _, _, c := newTestService(bookID)

	require.NoError(t, svc.Unsave(context.Background(), uuid.New(), bookID))
	assert.Empty(t, c.deleted)
}
