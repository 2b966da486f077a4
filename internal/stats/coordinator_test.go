package stats

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []any
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	return r.scan(dest...)
}

// fakeTx scripts Exec/QueryRow behavior; the embedded pgx.Tx panics on
// anything the coordinator should never call.
type fakeTx struct {
	pgx.Tx
	execLog    []execCall
	execErr    func(sql string) error
	onQueryRow func(sql string, args []any) func(dest ...any) error
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execLog = append(f.execLog, execCall{sql: sql, args: args})
	if f.execErr != nil {
		if err := f.execErr(sql); err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (f *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return fakeRow{scan: f.onQueryRow(sql, args)}
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	f.rolledBack = true
	return nil
}

type fakeDB struct {
	newTx  func() *fakeTx
	begins int
	txs    []*fakeTx
}

func (d *fakeDB) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	d.begins++
	tx := d.newTx()
	d.txs = append(d.txs, tx)
	return tx, nil
}

func scanUUID(id uuid.UUID) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*uuid.UUID)) = id
		return nil
	}
}

func scanInt64(n int64) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*int64)) = n
		return nil
	}
}

func scanErr(err error) func(dest ...any) error {
	return func(dest ...any) error {
		return err
	}
}

func lockTimeoutErr() error {
	return &pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"}
}

func testOptions() Options {
	return Options{
		LockTimeout:  time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}
}

func TestExecute_CommitsMutationAndAggregate(t *testing.T) {
	bookID := uuid.New()
	mutated := false

	db := &fakeDB{newTx: func() *fakeTx {
		tx := &fakeTx{}
		tx.onQueryRow = func(sql string, args []any) func(dest ...any) error {
			switch {
			case strings.Contains(sql, "FOR UPDATE"):
				assert.True(t, mutated, "parent lock must come after the mutation")
				return scanUUID(bookID)
			case strings.Contains(sql, "saved_books"):
				return scanInt64(3)
			default:
				t.Fatalf("unexpected query: %s", sql)
				return nil
			}
		}
		return tx
	}}

	coord := NewCoordinator(db, NewEngine(), testOptions())

	err := coord.Execute(context.Background(), SaveTarget(bookID), func(tx pgx.Tx) error {
		mutated = true
		return nil
	})
	require.NoError(t, err)
	require.Len(t, db.txs, 1)

	tx := db.txs[0]
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)

	// First statement bounds lock waits, last writes the aggregate.
	require.NotEmpty(t, tx.execLog)
	assert.Contains(t, tx.execLog[0].sql, "SET LOCAL lock_timeout")

	last := tx.execLog[len(tx.execLog)-1]
	assert.Contains(t, last.sql, "total_saves")
	assert.Equal(t, bookID, last.args[0])
	assert.Equal(t, int64(3), last.args[1])
}

func TestExecute_MutateErrorRollsBackEverything(t *testing.T) {
	bookID := uuid.New()
	errBoom := errors.New("duplicate rating")

	db := &fakeDB{newTx: func() *fakeTx {
		tx := &fakeTx{}
		tx.onQueryRow = func(sql string, args []any) func(dest ...any) error {
			t.Fatalf("no query expected after mutate failure, got: %s", sql)
			return nil
		}
		return tx
	}}

	coord := NewCoordinator(db, NewEngine(), testOptions())

	err := coord.Execute(context.Background(), RatingTarget(bookID), func(tx pgx.Tx) error {
		return errBoom
	})

	// Domain errors pass through unchanged so sentinels survive.
	require.ErrorIs(t, err, errBoom)
	require.Len(t, db.txs, 1)
	assert.True(t, db.txs[0].rolledBack)
	assert.False(t, db.txs[0].committed)

	// Only the lock_timeout statement ran; no aggregate was written.
	require.Len(t, db.txs[0].execLog, 1)
	assert.Contains(t, db.txs[0].execLog[0].sql, "SET LOCAL lock_timeout")
}

func TestExecute_LockTimeoutExhaustsRetries(t *testing.T) {
	bookID := uuid.New()

	db := &fakeDB{newTx: func() *fakeTx {
		tx := &fakeTx{}
		tx.onQueryRow = func(sql string, args []any) func(dest ...any) error {
			require.Contains(t, sql, "FOR UPDATE")
			return scanErr(lockTimeoutErr())
		}
		return tx
	}}

	coord := NewCoordinator(db, NewEngine(), testOptions())

	err := coord.Execute(context.Background(), CommentTarget(bookID), nil)
	require.ErrorIs(t, err, ErrConflict)

	// MaxRetries=2 means three attempts, each rolled back.
	assert.Equal(t, 3, db.begins)
	for _, tx := range db.txs {
		assert.True(t, tx.rolledBack)
		assert.False(t, tx.committed)
	}
}

func TestExecute_LockTimeoutThenSuccess(t *testing.T) {
	bookID := uuid.New()
	attempt := 0

	db := &fakeDB{}
	db.newTx = func() *fakeTx {
		attempt++
		failing := attempt == 1
		tx := &fakeTx{}
		tx.onQueryRow = func(sql string, args []any) func(dest ...any) error {
			switch {
			case strings.Contains(sql, "FOR UPDATE"):
				if failing {
					return scanErr(lockTimeoutErr())
				}
				return scanUUID(bookID)
			case strings.Contains(sql, "comments"):
				return scanInt64(7)
			default:
				t.Fatalf("unexpected query: %s", sql)
				return nil
			}
		}
		return tx
	}

	coord := NewCoordinator(db, NewEngine(), testOptions())

	err := coord.Execute(context.Background(), CommentTarget(bookID), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, db.begins)
	assert.True(t, db.txs[0].rolledBack)
	assert.True(t, db.txs[1].committed)

	last := db.txs[1].execLog[len(db.txs[1].execLog)-1]
	assert.Contains(t, last.sql, "total_comments")
	assert.Equal(t, int64(7), last.args[1])
}

func TestExecute_ParentMissing(t *testing.T) {
	db := &fakeDB{newTx: func() *fakeTx {
		tx := &fakeTx{}
		tx.onQueryRow = func(sql string, args []any) func(dest ...any) error {
			require.Contains(t, sql, "FOR UPDATE")
			return scanErr(pgx.ErrNoRows)
		}
		return tx
	}}

	coord := NewCoordinator(db, NewEngine(), testOptions())

	err := coord.Execute(context.Background(), RatingTarget(uuid.New()), nil)
	require.ErrorIs(t, err, ErrParentNotFound)
	// A missing parent is not transient; no retry.
	assert.Equal(t, 1, db.begins)
}

func TestExecute_RecomputeFailureWrapped(t *testing.T) {
	bookID := uuid.New()

	db := &fakeDB{newTx: func() *fakeTx {
		tx := &fakeTx{}
		tx.onQueryRow = func(sql string, args []any) func(dest ...any) error {
			if strings.Contains(sql, "FOR UPDATE") {
				return scanUUID(bookID)
			}
			return scanErr(errors.New("corrupt row"))
		}
		return tx
	}}

	coord := NewCoordinator(db, NewEngine(), testOptions())

	err := coord.Execute(context.Background(), SaveTarget(bookID), nil)
	require.ErrorIs(t, err, ErrRecomputeFailed)
	assert.True(t, db.txs[0].rolledBack)
	assert.False(t, db.txs[0].committed)
}

func TestExecute_RatingAggregateWritesAverage(t *testing.T) {
	bookID := uuid.New()

	db := &fakeDB{newTx: func() *fakeTx {
		tx := &fakeTx{}
		tx.onQueryRow = func(sql string, args []any) func(dest ...any) error {
			switch {
			case strings.Contains(sql, "FOR UPDATE"):
				return scanUUID(bookID)
			case strings.Contains(sql, "ratings"):
				return func(dest ...any) error {
					*(dest[0].(*int64)) = 2
					avg := "4.50"
					*(dest[1].(**string)) = &avg
					return nil
				}
			default:
				t.Fatalf("unexpected query: %s", sql)
				return nil
			}
		}
		return tx
	}}

	coord := NewCoordinator(db, NewEngine(), testOptions())

	err := coord.Execute(context.Background(), RatingTarget(bookID), nil)
	require.NoError(t, err)

	last := db.txs[0].execLog[len(db.txs[0].execLog)-1]
	assert.Contains(t, last.sql, "avg_rating")
	assert.Equal(t, "4.5", last.args[1])
	assert.Equal(t, int64(2), last.args[2])
}

func TestExecute_LikeTargetLocksCommentRow(t *testing.T) {
	commentID := uuid.New()
	var lockQuery string

	db := &fakeDB{newTx: func() *fakeTx {
		tx := &fakeTx{}
		tx.onQueryRow = func(sql string, args []any) func(dest ...any) error {
			switch {
			case strings.Contains(sql, "FOR UPDATE"):
				lockQuery = sql
				require.Equal(t, commentID, args[0])
				return scanUUID(commentID)
			case strings.Contains(sql, "comment_likes"):
				return scanInt64(1)
			default:
				t.Fatalf("unexpected query: %s", sql)
				return nil
			}
		}
		return tx
	}}

	coord := NewCoordinator(db, NewEngine(), testOptions())

	err := coord.Execute(context.Background(), LikeTarget(commentID), nil)
	require.NoError(t, err)

	// Like counts lock the comment row, never the book.
	assert.Contains(t, lockQuery, "FROM comments")

	last := db.txs[0].execLog[len(db.txs[0].execLog)-1]
	assert.Contains(t, last.sql, "likes_count")
	assert.Equal(t, int64(1), last.args[1])
}
