package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-backend/internal/infrastructure/email"
	"portfolio-backend/internal/shared"
)

type recordingClient struct {
	tasks []*asynq.Task
	err   error
}

func (c *recordingClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

func TestEnqueueDeleteImages(t *testing.T) {
	client := &recordingClient{}
	p := NewTaskPublisher(client)

	require.NoError(t, p.EnqueueDeleteImages(context.Background(), "p1", []string{"/uploads/a.png"}))
	require.Len(t, client.tasks, 1)
	assert.Equal(t, shared.TypeDeleteProjectImages, client.tasks[0].Type())

	var payload shared.DeleteImagesPayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
	assert.Equal(t, "p1", payload.ProjectID)
	assert.Equal(t, []string{"/uploads/a.png"}, payload.URLs)

	// nothing to delete, nothing enqueued
	require.NoError(t, p.EnqueueDeleteImages(context.Background(), "p1", nil))
	assert.Len(t, client.tasks, 1)
}

func TestEnqueueContactEmail(t *testing.T) {
	client := &recordingClient{}
	p := NewTaskPublisher(client)

	require.NoError(t, p.EnqueueContactEmail(context.Background(), email.ContactEmailData{Name: "Ada", Email: "ada@example.com", Message: "hi"}))
	require.Len(t, client.tasks, 1)
	assert.Equal(t, shared.TypeSendContactEmail, client.tasks[0].Type())

	client.err = errors.New("redis down")
	err := p.EnqueueContactEmail(context.Background(), email.ContactEmailData{})
	assert.ErrorContains(t, err, "redis down")
}
