package model

import (
	"time"

	"github.com/google/uuid"
)

// Rating is one user's star rating of one book. There is at most one row
// per (user, book); re-rating updates it in place and unrating soft-deletes
// it, so history is never lost while aggregates reference it.
type Rating struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	BookID uuid.UUID `json:"book_id"`

	Stars      int     `json:"stars"` // 1-5
	ReviewText *string `json:"review_text"`

	// PreviousStars keeps the last value before an update, for audit.
	PreviousStars *int `json:"previous_stars"`

	// IsActive false = soft-deleted; excluded from aggregates.
	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
