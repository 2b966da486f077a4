package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Client enqueues stats tasks from the API process.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddress string) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddress}),
	}
}

// EnqueueReconcileBook schedules an out-of-band repair of one book's
// aggregates.
func (c *Client) EnqueueReconcileBook(bookID uuid.UUID) error {
	payload, err := json.Marshal(ReconcileBookPayload{BookID: bookID})
	if err != nil {
		return fmt.Errorf("failed to marshal reconcile payload: %w", err)
	}

	task := asynq.NewTask(TypeStatsReconcileBook, payload)
	_, err = c.client.Enqueue(task,
		asynq.Queue(QueueStats),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue reconcile task: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
