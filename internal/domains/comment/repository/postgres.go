package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"booklib-backend/internal/domains/comment/model"
	"booklib-backend/pkg/database"
)

type postgresCommentRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &postgresCommentRepository{pool: pool}
}

const commentColumns = `
	id, user_id, book_id, parent_id, depth, text, status,
	is_active, likes_count, is_edited, edited_at, created_at, updated_at
`

func scanComment(row pgx.Row) (*model.Comment, error) {
	comment := &model.Comment{}
	err := row.Scan(
		&comment.ID,
		&comment.UserID,
		&comment.BookID,
		&comment.ParentID,
		&comment.Depth,
		&comment.Text,
		&comment.Status,
		&comment.IsActive,
		&comment.LikesCount,
		&comment.IsEdited,
		&comment.EditedAt,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// GetByID reads a comment through q, or the pool when q is nil.
func (r *postgresCommentRepository) GetByID(
	ctx context.Context,
	q database.Querier,
	id uuid.UUID,
) (*model.Comment, error) {
	if q == nil {
		q = r.pool
	}

	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment, err := scanComment(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

func (r *postgresCommentRepository) Create(
	ctx context.Context,
	q database.Querier,
	comment *model.Comment,
) error {
	query := `
		INSERT INTO comments (
			id, user_id, book_id, parent_id, depth, text, status,
			is_active, likes_count, is_edited, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, false, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		comment.ID,
		comment.UserID,
		comment.BookID,
		comment.ParentID,
		comment.Depth,
		comment.Text,
		comment.Status,
		comment.IsActive,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// UpdateText rewrites only the author-owned columns. Status and is_active
// stay untouched so a concurrent moderation or soft delete survives the edit.
func (r *postgresCommentRepository) UpdateText(
	ctx context.Context,
	q database.Querier,
	id uuid.UUID,
	text string,
	editedAt time.Time,
) error {
	query := `
		UPDATE comments
		SET text = $2,
		    is_edited = true,
		    edited_at = $3,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query, id, text, editedAt)
	if err != nil {
		return fmt.Errorf("failed to update comment text: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrCommentNotFound
	}
	return nil
}

func (r *postgresCommentRepository) SetActive(
	ctx context.Context,
	q database.Querier,
	id uuid.UUID,
	active bool,
) error {
	query := `UPDATE comments SET is_active = $2, updated_at = NOW() WHERE id = $1`

	result, err := q.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to set comment active flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrCommentNotFound
	}
	return nil
}

func (r *postgresCommentRepository) UpdateStatus(
	ctx context.Context,
	q database.Querier,
	id uuid.UUID,
	status model.Status,
) error {
	query := `UPDATE comments SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update comment status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrCommentNotFound
	}
	return nil
}

// ListByBook returns approved, active comments oldest first so threads
// read top-down.
func (r *postgresCommentRepository) ListByBook(
	ctx context.Context,
	bookID uuid.UUID,
	page, limit int,
) ([]*model.Comment, int, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE book_id = $1 AND is_active = true AND status = 'approved'
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, bookID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read comments: %w", err)
	}

	countQuery := `
		SELECT COUNT(*) FROM comments
		WHERE book_id = $1 AND is_active = true AND status = 'approved'
	`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, bookID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return comments, total, nil
}

// UpsertLike creates the (user, comment) row or rewrites is_like in place.
// ON CONFLICT absorbs the race between two first-time reactions: the loser
// lands on the winner's row instead of surfacing a unique violation. The
// stored id and created_at are scanned back so the caller always sees the
// surviving row.
func (r *postgresCommentRepository) UpsertLike(
	ctx context.Context,
	q database.Querier,
	like *model.CommentLike,
) error {
	query := `
		INSERT INTO comment_likes (id, user_id, comment_id, is_like, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, comment_id)
		DO UPDATE SET is_like = EXCLUDED.is_like, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		like.ID,
		like.UserID,
		like.CommentID,
		like.IsLike,
		like.CreatedAt,
		like.UpdatedAt,
	).Scan(&like.ID, &like.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert comment like: %w", err)
	}
	return nil
}
