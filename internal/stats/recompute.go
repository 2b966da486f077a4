package stats

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"booklib-backend/pkg/database"
)

// countableComments is the single definition of which comment rows count
// toward a book's total_comments: soft-deleted and unapproved rows are
// excluded everywhere this predicate is used.
const countableComments = "is_active = true AND status = 'approved'"

// Engine recomputes aggregate values from current child rows. Every method
// is a read-only, deterministic query: running it twice against the same
// data yields the same result. The engine never decides when to run; that
// is the Coordinator's job.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// RatingStats is the recomputed rating aggregate for one book.
type RatingStats struct {
	// AvgRating is the mean of stars over active ratings, rounded to two
	// decimals. Nil when the book has no active ratings.
	AvgRating    *decimal.Decimal
	TotalRatings int64
}

// BookRatingStats recomputes avg_rating and total_ratings over active
// ratings only.
func (e *Engine) BookRatingStats(ctx context.Context, q database.Querier, bookID uuid.UUID) (RatingStats, error) {
	query := `
		SELECT COUNT(*), ROUND(AVG(stars)::numeric, 2)::text
		FROM ratings
		WHERE book_id = $1 AND is_active = true
	`

	var stats RatingStats
	var avg *string
	if err := q.QueryRow(ctx, query, bookID).Scan(&stats.TotalRatings, &avg); err != nil {
		return RatingStats{}, fmt.Errorf("failed to recompute rating stats: %w", err)
	}

	if avg != nil {
		d, err := decimal.NewFromString(*avg)
		if err != nil {
			return RatingStats{}, fmt.Errorf("invalid average rating %q: %w", *avg, err)
		}
		stats.AvgRating = &d
	}

	return stats, nil
}

// BookCommentCount recomputes total_comments over countable comments
// (active AND approved).
func (e *Engine) BookCommentCount(ctx context.Context, q database.Querier, bookID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM comments WHERE book_id = $1 AND ` + countableComments

	var count int64
	if err := q.QueryRow(ctx, query, bookID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to recompute comment count: %w", err)
	}
	return count, nil
}

// BookSaveCount recomputes total_saves over active saved rows.
func (e *Engine) BookSaveCount(ctx context.Context, q database.Querier, bookID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM saved_books WHERE book_id = $1 AND is_active = true`

	var count int64
	if err := q.QueryRow(ctx, query, bookID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to recompute save count: %w", err)
	}
	return count, nil
}

// CommentLikeCount recomputes likes_count for one comment. Only is_like=true
// rows count; dislikes exist as rows but contribute nothing.
func (e *Engine) CommentLikeCount(ctx context.Context, q database.Querier, commentID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM comment_likes WHERE comment_id = $1 AND is_like = true`

	var count int64
	if err := q.QueryRow(ctx, query, commentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to recompute like count: %w", err)
	}
	return count, nil
}
