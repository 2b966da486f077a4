package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"booklib-backend/pkg/database"
)

// Kind names the aggregate a child mutation affects.
type Kind int

const (
	KindRating Kind = iota + 1
	KindComment
	KindSave
	KindCommentLike
)

func (k Kind) String() string {
	switch k {
	case KindRating:
		return "rating"
	case KindComment:
		return "comment"
	case KindSave:
		return "save"
	case KindCommentLike:
		return "comment_like"
	default:
		return "unknown"
	}
}

// Target identifies the parent row whose aggregate must be recomputed.
// Book-level aggregates lock the books row; like counts lock only the
// affected comments row, never its book.
type Target struct {
	Kind      Kind
	BookID    uuid.UUID
	CommentID uuid.UUID
}

func RatingTarget(bookID uuid.UUID) Target {
	return Target{Kind: KindRating, BookID: bookID}
}

func CommentTarget(bookID uuid.UUID) Target {
	return Target{Kind: KindComment, BookID: bookID}
}

func SaveTarget(bookID uuid.UUID) Target {
	return Target{Kind: KindSave, BookID: bookID}
}

func LikeTarget(commentID uuid.UUID) Target {
	return Target{Kind: KindCommentLike, CommentID: commentID}
}

// MutateFunc applies the child-record mutation inside the coordinator's
// transaction. Returning an error rolls the whole transaction back.
type MutateFunc func(tx pgx.Tx) error

// Options tunes lock waits and retries.
type Options struct {
	// LockTimeout bounds the wait on the parent row lock per attempt.
	LockTimeout time.Duration
	// MaxRetries is how many extra attempts a lock-wait timeout gets.
	MaxRetries int
	// RetryBackoff is the base delay between attempts, doubled each retry.
	RetryBackoff time.Duration
}

// Coordinator makes every child mutation and its aggregate recompute appear
// atomic. It owns the only code path that writes the denormalized columns
// on books and comments; nothing else may touch them.
type Coordinator struct {
	db     database.TxBeginner
	engine *Engine
	opts   Options
}

func NewCoordinator(db database.TxBeginner, engine *Engine, opts Options) *Coordinator {
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = 3 * time.Second
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 50 * time.Millisecond
	}
	return &Coordinator{db: db, engine: engine, opts: opts}
}

// Execute runs mutate and the recompute for target atomically:
//
//  1. begin transaction, bound lock waits with SET LOCAL lock_timeout
//  2. apply the child mutation
//  3. lock the parent row (FOR UPDATE) — serializes writers per parent
//  4. recompute the affected aggregate from tx-visible data
//  5. write the aggregate to the parent row
//  6. commit; any failure rolls everything back
//
// Lock-wait timeouts are retried up to MaxRetries with backoff, then
// surfaced as ErrConflict. Errors from mutate pass through unchanged so
// domain sentinels (uniqueness, not-found) survive. Any other failure in
// steps 3–5 comes back wrapped in ErrRecomputeFailed.
func (c *Coordinator) Execute(ctx context.Context, target Target, mutate MutateFunc) error {
	var lastErr error

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.opts.RetryBackoff * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			log.Warn().
				Str("kind", target.Kind.String()).
				Int("attempt", attempt+1).
				Msg("retrying aggregate update after lock timeout")
		}

		err := c.runOnce(ctx, target, mutate)
		if err == nil {
			return nil
		}
		if !isLockTimeout(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%w (after %d attempts): %v", ErrConflict, c.opts.MaxRetries+1, lastErr)
}

func (c *Coordinator) runOnce(ctx context.Context, target Target, mutate MutateFunc) error {
	return database.WithTransaction(ctx, c.db, func(tx pgx.Tx) error {
		// SET LOCAL keeps the timeout scoped to this transaction.
		timeoutStmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", c.opts.LockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, timeoutStmt); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}

		if mutate != nil {
			if err := mutate(tx); err != nil {
				return err
			}
		}

		if err := c.lockParent(ctx, tx, target); err != nil {
			return err
		}

		if err := c.applyAggregates(ctx, tx, target); err != nil {
			if isLockTimeout(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrRecomputeFailed, err)
		}

		return nil
	})
}

// lockParent takes the exclusive per-parent lock. All committed mutations
// to the same parent are linearized here; unrelated parents never block
// each other.
func (c *Coordinator) lockParent(ctx context.Context, tx pgx.Tx, target Target) error {
	var query string
	var id uuid.UUID

	if target.Kind == KindCommentLike {
		query = `SELECT id FROM comments WHERE id = $1 FOR UPDATE`
		id = target.CommentID
	} else {
		query = `SELECT id FROM books WHERE id = $1 FOR UPDATE`
		id = target.BookID
	}

	var locked uuid.UUID
	if err := tx.QueryRow(ctx, query, id).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s %s", ErrParentNotFound, target.Kind, id)
		}
		return err
	}
	return nil
}

func (c *Coordinator) applyAggregates(ctx context.Context, tx pgx.Tx, target Target) error {
	switch target.Kind {
	case KindRating:
		ratingStats, err := c.engine.BookRatingStats(ctx, tx, target.BookID)
		if err != nil {
			return err
		}
		return c.writeRatingStats(ctx, tx, target.BookID, ratingStats)

	case KindComment:
		count, err := c.engine.BookCommentCount(ctx, tx, target.BookID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE books SET total_comments = $2, updated_at = NOW() WHERE id = $1`,
			target.BookID, count)
		return err

	case KindSave:
		count, err := c.engine.BookSaveCount(ctx, tx, target.BookID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE books SET total_saves = $2, updated_at = NOW() WHERE id = $1`,
			target.BookID, count)
		return err

	case KindCommentLike:
		count, err := c.engine.CommentLikeCount(ctx, tx, target.CommentID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE comments SET likes_count = $2, updated_at = NOW() WHERE id = $1`,
			target.CommentID, count)
		return err

	default:
		return fmt.Errorf("unknown aggregate kind %d", target.Kind)
	}
}

func (c *Coordinator) writeRatingStats(ctx context.Context, tx pgx.Tx, bookID uuid.UUID, s RatingStats) error {
	var avg interface{}
	if s.AvgRating != nil {
		avg = s.AvgRating.String()
	}
	_, err := tx.Exec(ctx,
		`UPDATE books SET avg_rating = $2, total_ratings = $3, updated_at = NOW() WHERE id = $1`,
		bookID, avg, s.TotalRatings)
	return err
}
