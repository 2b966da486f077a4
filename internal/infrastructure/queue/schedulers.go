package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"booklib-backend/internal/config"
	"booklib-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	cfg       config.WorkerConfig
}

func NewScheduler(redisAddress string, cfg config.WorkerConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		cfg:       cfg,
	}
}

// RegisterJobs wires the periodic stats jobs.
func (s *Scheduler) RegisterJobs() error {
	return s.registerReconcileSweepJob()
}

// Reconcile sweep: walks every book and replays the recompute inside the
// usual locked transaction. The coordinator keeps aggregates consistent on
// its own; the sweep repairs drift introduced outside it (manual fixes,
// restores) and runs off-peak.
func (s *Scheduler) registerReconcileSweepJob() error {
	payload, err := json.Marshal(ReconcileAllPayload{BatchSize: 500})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeStatsReconcileAll, payload)

	_, err = s.scheduler.Register(
		s.cfg.ReconcileSchedule,
		task,
		asynq.Queue(QueueStats),
		asynq.MaxRetry(1),
		asynq.Timeout(30*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register stats reconcile sweep", err)
		return err
	}

	logger.Info("Registered stats reconcile sweep", map[string]interface{}{
		"schedule": s.cfg.ReconcileSchedule,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
