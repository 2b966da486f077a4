package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"booklib-backend/internal/domains/rating/model"
	"booklib-backend/pkg/database"
)

const uniqueViolation = "23505"

type postgresRatingRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRatingRepository(pool *pgxpool.Pool) RatingRepository {
	return &postgresRatingRepository{pool: pool}
}

const ratingColumns = `
	id, user_id, book_id, stars, review_text, previous_stars,
	is_active, created_at, updated_at
`

func scanRating(row pgx.Row) (*model.Rating, error) {
	rating := &model.Rating{}
	err := row.Scan(
		&rating.ID,
		&rating.UserID,
		&rating.BookID,
		&rating.Stars,
		&rating.ReviewText,
		&rating.PreviousStars,
		&rating.IsActive,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rating, nil
}

func (r *postgresRatingRepository) GetByUserAndBook(
	ctx context.Context,
	q database.Querier,
	userID, bookID uuid.UUID,
) (*model.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE user_id = $1 AND book_id = $2`

	rating, err := scanRating(q.QueryRow(ctx, query, userID, bookID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return rating, nil
}

func (r *postgresRatingRepository) Create(
	ctx context.Context,
	q database.Querier,
	rating *model.Rating,
) error {
	query := `
		INSERT INTO ratings (
			id, user_id, book_id, stars, review_text, previous_stars,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.Exec(ctx, query,
		rating.ID,
		rating.UserID,
		rating.BookID,
		rating.Stars,
		rating.ReviewText,
		rating.PreviousStars,
		rating.IsActive,
		rating.CreatedAt,
		rating.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrAlreadyRated
		}
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

func (r *postgresRatingRepository) Update(
	ctx context.Context,
	q database.Querier,
	rating *model.Rating,
) error {
	query := `
		UPDATE ratings
		SET stars = $2,
		    review_text = $3,
		    previous_stars = $4,
		    is_active = $5,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query,
		rating.ID,
		rating.Stars,
		rating.ReviewText,
		rating.PreviousStars,
		rating.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrRatingNotFound
	}
	return nil
}

func (r *postgresRatingRepository) ListByBook(
	ctx context.Context,
	bookID uuid.UUID,
	page, limit int,
) ([]*model.Rating, int, error) {
	query := `
		SELECT ` + ratingColumns + `
		FROM ratings
		WHERE book_id = $1 AND is_active = true
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, bookID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*model.Rating
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read ratings: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM ratings WHERE book_id = $1 AND is_active = true`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, bookID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ratings: %w", err)
	}

	return ratings, total, nil
}
