package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"booklib-backend/internal/domains/saved/model"
	"booklib-backend/pkg/database"
)

const uniqueViolation = "23505"

type postgresSavedRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSavedRepository(pool *pgxpool.Pool) SavedRepository {
	return &postgresSavedRepository{pool: pool}
}

const savedColumns = `id, user_id, book_id, status, is_active, created_at, updated_at`

func scanSaved(row pgx.Row) (*model.SavedBook, error) {
	saved := &model.SavedBook{}
	err := row.Scan(
		&saved.ID,
		&saved.UserID,
		&saved.BookID,
		&saved.Status,
		&saved.IsActive,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *postgresSavedRepository) GetByUserAndBook(
	ctx context.Context,
	q database.Querier,
	userID, bookID uuid.UUID,
) (*model.SavedBook, error) {
	if q == nil {
		q = r.pool
	}

	query := `SELECT ` + savedColumns + ` FROM saved_books WHERE user_id = $1 AND book_id = $2`

	saved, err := scanSaved(q.QueryRow(ctx, query, userID, bookID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSaveNotFound
		}
		return nil, fmt.Errorf("failed to get saved book: %w", err)
	}
	return saved, nil
}

func (r *postgresSavedRepository) Create(
	ctx context.Context,
	q database.Querier,
	saved *model.SavedBook,
) error {
	query := `
		INSERT INTO saved_books (id, user_id, book_id, status, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.Exec(ctx, query,
		saved.ID,
		saved.UserID,
		saved.BookID,
		saved.Status,
		saved.IsActive,
		saved.CreatedAt,
		saved.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrAlreadySaved
		}
		return fmt.Errorf("failed to create saved book: %w", err)
	}
	return nil
}

func (r *postgresSavedRepository) Update(
	ctx context.Context,
	q database.Querier,
	saved *model.SavedBook,
) error {
	if q == nil {
		q = r.pool
	}

	query := `
		UPDATE saved_books
		SET status = $2,
		    is_active = $3,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query, saved.ID, saved.Status, saved.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update saved book: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrSaveNotFound
	}
	return nil
}

func (r *postgresSavedRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	page, limit int,
) ([]*model.SavedBook, int, error) {
	query := `
		SELECT ` + savedColumns + `
		FROM saved_books
		WHERE user_id = $1 AND is_active = true
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list saved books: %w", err)
	}
	defer rows.Close()

	var items []*model.SavedBook
	for rows.Next() {
		saved, err := scanSaved(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan saved book: %w", err)
		}
		items = append(items, saved)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read saved books: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM saved_books WHERE user_id = $1 AND is_active = true`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count saved books: %w", err)
	}

	return items, total, nil
}
