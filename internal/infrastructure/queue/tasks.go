package queue

import "github.com/google/uuid"

// Task types
const (
	TypeStatsReconcileAll  = "stats:reconcile_all"
	TypeStatsReconcileBook = "stats:reconcile_book"
)

// Queue names
const (
	QueueStats = "stats"
)

// ReconcileAllPayload is the payload for the nightly sweep. BatchSize
// bounds how many books each keyset page pulls.
type ReconcileAllPayload struct {
	BatchSize int `json:"batch_size"`
}

// ReconcileBookPayload targets a single book, used for on-demand repair.
type ReconcileBookPayload struct {
	BookID uuid.UUID `json:"book_id"`
}
