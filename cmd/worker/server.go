package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	"booklib-backend/internal/infrastructure/queue"
	"booklib-backend/internal/infrastructure/queue/handlers"
	"booklib-backend/pkg/container"
)

// asynqServer wraps asynq.Server for shutdown handling.
type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(c *container.Container) *asynqServer {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeStatsReconcileBook, handlers.StatsReconcileBookHandler(c.StatsCoordinator))
	mux.HandleFunc(queue.TypeStatsReconcileAll, handlers.StatsReconcileAllHandler(c.StatsCoordinator, c.DB.Pool))

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: c.Config.Redis.Host},
		asynq.Config{
			Queues: map[string]int{
				queue.QueueStats: 10,
				"default":        5,
			},
			Concurrency: c.Config.Worker.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq] Task failed - Type: %s, Error: %v", task.Type(), err)
			}),
		},
	)

	go func() {
		log.Println("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[Worker] Failed: %v", err)
		}
	}()

	return &asynqServer{Server: srv}
}

func (s *asynqServer) Shutdown() {
	log.Println("[Worker] Shutting down...")
	s.Server.Shutdown()
	log.Println("[Worker] Stopped")
}
