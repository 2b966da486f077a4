package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"booklib-backend/internal/domains/book/model"
)

type postgresBookRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresBookRepository(pool *pgxpool.Pool) BookRepository {
	return &postgresBookRepository{pool: pool}
}

const bookColumns = `
	id, title, author, description,
	avg_rating::text, total_ratings, total_saves, total_comments,
	created_at, updated_at
`

func scanBook(row pgx.Row) (*model.Book, error) {
	book := &model.Book{}
	var avg *string

	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Description,
		&avg,
		&book.TotalRatings,
		&book.TotalSaves,
		&book.TotalComments,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if avg != nil {
		d, err := decimal.NewFromString(*avg)
		if err != nil {
			return nil, fmt.Errorf("invalid avg_rating %q: %w", *avg, err)
		}
		book.AvgRating = &d
	}
	return book, nil
}

func (r *postgresBookRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

func (r *postgresBookRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check book existence: %w", err)
	}
	return exists, nil
}

func (r *postgresBookRepository) GetStats(ctx context.Context, id uuid.UUID) (*model.Stats, error) {
	query := `
		SELECT id, avg_rating::text, total_ratings, total_saves, total_comments
		FROM books
		WHERE id = $1
	`

	stats := &model.Stats{}
	var avg *string

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&stats.BookID,
		&avg,
		&stats.TotalRatings,
		&stats.TotalSaves,
		&stats.TotalComments,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book stats: %w", err)
	}

	if avg != nil {
		d, err := decimal.NewFromString(*avg)
		if err != nil {
			return nil, fmt.Errorf("invalid avg_rating %q: %w", *avg, err)
		}
		stats.AvgRating = &d
	}
	return stats, nil
}

func (r *postgresBookRepository) List(ctx context.Context, search string, page, limit int) ([]*model.Book, int, error) {
	query := `SELECT ` + bookColumns + ` FROM books`
	countQuery := `SELECT COUNT(*) FROM books`
	args := []interface{}{}

	if search != "" {
		query += ` WHERE title ILIKE $1 OR author ILIKE $1`
		countQuery += ` WHERE title ILIKE $1 OR author ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	query += fmt.Sprintf(" ORDER BY title LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	listArgs := append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []*model.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read books: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	return books, total, nil
}
