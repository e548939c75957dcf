package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/infrastructure/email"
	"portfolio-backend/internal/shared"
)

// RedisOpt is the connection both the API client and the worker use.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Host, Password: cfg.Password, DB: cfg.DB}
}

// Enqueuer is the subset of *asynq.Client the producers need.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskPublisher builds and enqueues the tasks produced by the API process.
type TaskPublisher struct {
	client Enqueuer
}

func NewTaskPublisher(client Enqueuer) *TaskPublisher {
	return &TaskPublisher{client: client}
}

// EnqueueDeleteImages schedules removal of urls from the image store.
func (p *TaskPublisher) EnqueueDeleteImages(ctx context.Context, projectID string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	payload, err := json.Marshal(shared.DeleteImagesPayload{ProjectID: projectID, URLs: urls})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	info, err := p.client.EnqueueContext(ctx,
		asynq.NewTask(shared.TypeDeleteProjectImages, payload),
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(5),
		// give in-flight readers a moment before the files disappear
		asynq.ProcessIn(30*time.Second),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", shared.TypeDeleteProjectImages, err)
	}

	log.Debug().
		Str("task_id", info.ID).
		Str("project_id", projectID).
		Int("urls", len(urls)).
		Msg("image cleanup enqueued")
	return nil
}

// EnqueueContactEmail hands a contact form submission to the mail worker.
func (p *TaskPublisher) EnqueueContactEmail(ctx context.Context, data email.ContactEmailData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	_, err = p.client.EnqueueContext(ctx,
		asynq.NewTask(shared.TypeSendContactEmail, payload),
		asynq.Queue(shared.QueueMail),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", shared.TypeSendContactEmail, err)
	}
	return nil
}
