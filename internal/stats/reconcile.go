package stats

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"booklib-backend/pkg/database"
)

// ReconcileBook replays every recompute for one book inside a single
// locked transaction, with no child mutation. Because recompute is
// idempotent this is a no-op on a consistent database; it exists to repair
// drift introduced outside the coordinator (manual fixes, restores).
func (c *Coordinator) ReconcileBook(ctx context.Context, bookID uuid.UUID) error {
	for _, target := range []Target{
		RatingTarget(bookID),
		CommentTarget(bookID),
		SaveTarget(bookID),
	} {
		if err := c.Execute(ctx, target, nil); err != nil {
			return fmt.Errorf("reconcile %s for book %s: %w", target.Kind, bookID, err)
		}
	}

	// Like counts live on comment rows; repair them all in one statement
	// rather than locking every comment individually.
	return database.WithTransaction(ctx, c.db, func(tx pgx.Tx) error {
		query := `
			UPDATE comments c
			SET likes_count = COALESCE(l.cnt, 0)
			FROM comments c2
			LEFT JOIN (
				SELECT comment_id, COUNT(*) AS cnt
				FROM comment_likes
				WHERE is_like = true
				GROUP BY comment_id
			) l ON l.comment_id = c2.id
			WHERE c.id = c2.id AND c.book_id = $1 AND c.likes_count IS DISTINCT FROM COALESCE(l.cnt, 0)
		`
		if _, err := tx.Exec(ctx, query, bookID); err != nil {
			return fmt.Errorf("%w: like counts for book %s: %v", ErrRecomputeFailed, bookID, err)
		}
		return nil
	})
}

// ListBookIDs pages through all book ids for the reconcile sweep.
func ListBookIDs(ctx context.Context, q database.Querier, afterID uuid.UUID, limit int) ([]uuid.UUID, error) {
	query := `SELECT id FROM books WHERE id > $1 ORDER BY id LIMIT $2`

	rows, err := q.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list book ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan book id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
