package model

const (
	// Content limits
	MaxTextLength = 1000

	// MaxDepth bounds comment nesting. Depth is stored at creation time
	// (top-level = 1) instead of re-derived by walking ancestors, so later
	// reparenting cannot silently deepen a thread.
	MaxDepth = 2
)

// Status is the moderation state of a comment. Only approved comments
// count toward a book's total_comments.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusSpam     Status = "spam"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusSpam:
		return true
	}
	return false
}
