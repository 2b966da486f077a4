package stats

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryTx(onQueryRow func(sql string, args []any) func(dest ...any) error) *fakeTx {
	return &fakeTx{onQueryRow: onQueryRow}
}

func TestBookRatingStats_NoActiveRatings(t *testing.T) {
	tx := queryTx(func(sql string, args []any) func(dest ...any) error {
		return func(dest ...any) error {
			*(dest[0].(*int64)) = 0
			*(dest[1].(**string)) = nil
			return nil
		}
	})

	stats, err := NewEngine().BookRatingStats(context.Background(), tx, uuid.New())
	require.NoError(t, err)

	// No ratings means null average, not zero.
	assert.Nil(t, stats.AvgRating)
	assert.Equal(t, int64(0), stats.TotalRatings)
}

func TestBookRatingStats_ParsesAverage(t *testing.T) {
	tx := queryTx(func(sql string, args []any) func(dest ...any) error {
		return func(dest ...any) error {
			*(dest[0].(*int64)) = 3
			avg := "4.33"
			*(dest[1].(**string)) = &avg
			return nil
		}
	})

	stats, err := NewEngine().BookRatingStats(context.Background(), tx, uuid.New())
	require.NoError(t, err)
	require.NotNil(t, stats.AvgRating)
	assert.Equal(t, "4.33", stats.AvgRating.String())
	assert.Equal(t, int64(3), stats.TotalRatings)
}

func TestBookRatingStats_InvalidAverage(t *testing.T) {
	tx := queryTx(func(sql string, args []any) func(dest ...any) error {
		return func(dest ...any) error {
			*(dest[0].(*int64)) = 1
			avg := "not-a-number"
			*(dest[1].(**string)) = &avg
			return nil
		}
	})

	_, err := NewEngine().BookRatingStats(context.Background(), tx, uuid.New())
	require.Error(t, err)
}

func TestBookCommentCount_UsesCountablePredicate(t *testing.T) {
	var seen string
	tx := queryTx(func(sql string, args []any) func(dest ...any) error {
		seen = sql
		return scanInt64(5)
	})

	count, err := NewEngine().BookCommentCount(context.Background(), tx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	// Soft-delete and moderation filters are one predicate, applied here
	// and nowhere else.
	assert.Contains(t, seen, "is_active = true")
	assert.Contains(t, seen, "status = 'approved'")
}

func TestCommentLikeCount_CountsLikesOnly(t *testing.T) {
	var seen string
	tx := queryTx(func(sql string, args []any) func(dest ...any) error {
		seen = sql
		return scanInt64(2)
	})

	count, err := NewEngine().CommentLikeCount(context.Background(), tx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Contains(t, seen, "is_like = true")
}

func TestBookSaveCount(t *testing.T) {
	tx := queryTx(func(sql string, args []any) func(dest ...any) error {
		assert.Contains(t, sql, "is_active = true")
		return scanInt64(9)
	})

	count, err := NewEngine().BookSaveCount(context.Background(), tx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(9), count)
}
