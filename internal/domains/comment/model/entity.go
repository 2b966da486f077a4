package model

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a user comment on a book, optionally a reply to another
// comment of the same book. Soft-deleted via IsActive; LikesCount is
// derived and written only by the stats coordinator.
type Comment struct {
	ID       uuid.UUID  `json:"id"`
	UserID   uuid.UUID  `json:"user_id"`
	BookID   uuid.UUID  `json:"book_id"`
	ParentID *uuid.UUID `json:"parent_id"`

	// Depth is fixed at creation: 1 for top-level, parent depth + 1 for
	// replies, never more than MaxDepth.
	Depth int `json:"depth"`

	Text   string `json:"text"`
	Status Status `json:"status"`

	IsActive   bool  `json:"is_active"`
	LikesCount int64 `json:"likes_count"`

	IsEdited bool       `json:"is_edited"`
	EditedAt *time.Time `json:"edited_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Countable reports whether this comment contributes to total_comments.
func (c *Comment) Countable() bool {
	return c.IsActive && c.Status == StatusApproved
}

// CommentLike is one user's like or dislike of a comment. One row per
// (user, comment); toggling rewrites IsLike in place.
type CommentLike struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CommentID uuid.UUID `json:"comment_id"`
	IsLike    bool      `json:"is_like"` // true = like, false = dislike
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
