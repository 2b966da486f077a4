package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book is the parent entity carrying the denormalized engagement stats.
// The four aggregate fields are written exclusively by the stats
// coordinator; catalog code treats them as read-only.
type Book struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`

	// Aggregates (derived from child rows)
	AvgRating     *decimal.Decimal `json:"avg_rating"`
	TotalRatings  int64            `json:"total_ratings"`
	TotalSaves    int64            `json:"total_saves"`
	TotalComments int64            `json:"total_comments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats is the aggregate snapshot returned by the stats read path.
type Stats struct {
	BookID        uuid.UUID        `json:"book_id"`
	AvgRating     *decimal.Decimal `json:"avg_rating"`
	TotalRatings  int64            `json:"total_ratings"`
	TotalSaves    int64            `json:"total_saves"`
	TotalComments int64            `json:"total_comments"`
}

// StatsCacheKey is the redis key for a book's cached stats. Mutation
// services delete this key after every committed aggregate update.
func StatsCacheKey(bookID uuid.UUID) string {
	return "book:stats:" + bookID.String()
}
