package model

import (
	"time"

	"github.com/google/uuid"
)

// SaveStatus is the reading-list shelf a saved book sits on. It never
// affects total_saves; only IsActive does.
type SaveStatus string

const (
	StatusWantToRead       SaveStatus = "want_to_read"
	StatusCurrentlyReading SaveStatus = "currently_reading"
	StatusFinished         SaveStatus = "finished"
)

func (s SaveStatus) IsValid() bool {
	switch s {
	case StatusWantToRead, StatusCurrentlyReading, StatusFinished:
		return true
	}
	return false
}

// SavedBook is one user's saved entry for a book. One row per
// (user, book) pair ever; unsave flips IsActive off and a later save
// reactivates the same row.
type SavedBook struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	BookID    uuid.UUID  `json:"book_id"`
	Status    SaveStatus `json:"status"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
