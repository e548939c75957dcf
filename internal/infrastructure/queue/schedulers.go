package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/shared"
	"portfolio-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	cfg       config.WorkerConfig
}

func NewScheduler(redisOpt asynq.RedisClientOpt, cfg config.WorkerConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
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

// RegisterJobs registers the periodic tasks. Jobs with an empty cron spec are skipped.
func (s *Scheduler) RegisterJobs() error {
	return s.registerGitHubRefreshJob()
}

func (s *Scheduler) Start() error { return s.scheduler.Start() }
func (s *Scheduler) Shutdown()    { s.scheduler.Shutdown() }

// Keeps the GitHub passthrough cache warm so visitors rarely hit the upstream API.
func (s *Scheduler) registerGitHubRefreshJob() error {
	if s.cfg.GitHubRefreshCron == "" {
		logger.Info("GitHub cache refresh disabled", map[string]interface{}{})
		return nil
	}

	payload, err := json.Marshal(shared.RefreshGitHubCachePayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeRefreshGitHubCache, payload)

	_, err = s.scheduler.Register(
		s.cfg.GitHubRefreshCron,
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(1),
		asynq.Timeout(time.Minute),
		asynq.Unique(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register GitHubRefresh job", err)
		return err
	}

	logger.Info("Registered GitHubRefresh job", map[string]interface{}{
		"cron": s.cfg.GitHubRefreshCron,
	})
	return nil
}
