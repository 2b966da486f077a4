package handlers

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"booklib-backend/internal/infrastructure/queue"
	"booklib-backend/internal/stats"
	"booklib-backend/pkg/logger"
)

// StatsReconcileBookHandler repairs one book's aggregates.
func StatsReconcileBookHandler(coordinator *stats.Coordinator) func(ctx context.Context, t *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var p queue.ReconcileBookPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return asynq.SkipRetry
		}

		if err := coordinator.ReconcileBook(ctx, p.BookID); err != nil {
			return err
		}

		logger.Info("Reconciled book stats", map[string]interface{}{
			"book_id": p.BookID.String(),
		})
		return nil
	}
}

// StatsReconcileAllHandler walks every book in keyset batches and replays
// the recompute for each. Idempotent: a consistent database comes out
// unchanged.
func StatsReconcileAllHandler(coordinator *stats.Coordinator, pool *pgxpool.Pool) func(ctx context.Context, t *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var p queue.ReconcileAllPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return asynq.SkipRetry
		}
		if p.BatchSize <= 0 {
			p.BatchSize = 500
		}

		var reconciled, failed int
		afterID := uuid.Nil
		for {
			ids, err := stats.ListBookIDs(ctx, pool, afterID, p.BatchSize)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				break
			}

			for _, id := range ids {
				if err := coordinator.ReconcileBook(ctx, id); err != nil {
					// Keep sweeping; one bad book must not starve the rest.
					logger.Error("Failed to reconcile book stats", err)
					failed++
					continue
				}
				reconciled++
			}
			afterID = ids[len(ids)-1]
		}

		logger.Info("Stats reconcile sweep finished", map[string]interface{}{
			"reconciled": reconciled,
			"failed":     failed,
		})
		return nil
	}
}
