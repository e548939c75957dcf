package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-backend/internal/shared"
)

type fakeRemover struct {
	removed []string
	failOn  string
}

func (f *fakeRemover) Remove(_ context.Context, url string) error {
	if url == f.failOn {
		return errors.New("bucket unavailable")
	}
	f.removed = append(f.removed, url)
	return nil
}

func task(t *testing.T, p shared.DeleteImagesPayload) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return asynq.NewTask(shared.TypeDeleteProjectImages, b)
}

func TestDeleteImagesHandler(t *testing.T) {
	images := &fakeRemover{}
	h := NewDeleteImagesHandler(images)

	err := h.ProcessTask(context.Background(), task(t, shared.DeleteImagesPayload{
		ProjectID: "p1",
		URLs:      []string{"/uploads/projects/a.png", "/uploads/projects/b.png"},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/projects/a.png", "/uploads/projects/b.png"}, images.removed)
}

func TestDeleteImagesHandler_ContinuesPastFailure(t *testing.T) {
	images := &fakeRemover{failOn: "/uploads/projects/a.png"}
	h := NewDeleteImagesHandler(images)

	err := h.ProcessTask(context.Background(), task(t, shared.DeleteImagesPayload{
		ProjectID: "p1",
		URLs:      []string{"/uploads/projects/a.png", "/uploads/projects/b.png"},
	}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	assert.Equal(t, []string{"/uploads/projects/b.png"}, images.removed)
}

func TestDeleteImagesHandler_BadPayloadSkipsRetry(t *testing.T) {
	h := NewDeleteImagesHandler(&fakeRemover{})
	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeDeleteProjectImages, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
