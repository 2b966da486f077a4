package stats

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrConflict means the parent row lock could not be acquired within the
	// configured timeout, even after retries. Safe to retry later: recompute
	// is deterministic.
	ErrConflict = errors.New("aggregate update conflict: lock wait timed out")

	// ErrRecomputeFailed means the aggregation itself failed. The child
	// mutation was rolled back and the parent aggregate keeps its last
	// committed value.
	ErrRecomputeFailed = errors.New("aggregate recompute failed")

	// ErrParentNotFound means the parent row targeted by the mutation does
	// not exist (deleted between validation and the locked transaction).
	ErrParentNotFound = errors.New("aggregate parent not found")
)

// lockNotAvailable is the SQLSTATE raised when lock_timeout expires.
const lockNotAvailable = "55P03"

func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == lockNotAvailable
}
