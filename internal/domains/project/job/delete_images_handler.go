package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/shared"
)

// ImageRemover deletes a stored image by its public URL. Removing a missing
// image must succeed.
type ImageRemover interface {
	Remove(ctx context.Context, url string) error
}

// DeleteImagesHandler removes images that are no longer referenced by a
// project (replaced on update, left behind by delete or by a failed write).
type DeleteImagesHandler struct {
	images ImageRemover
}

func NewDeleteImagesHandler(images ImageRemover) *DeleteImagesHandler {
	return &DeleteImagesHandler{
		images: images,
	}
}

func (h *DeleteImagesHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.DeleteImagesPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal DeleteImages payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Info().
		Str("project_id", payload.ProjectID).
		Int("count", len(payload.URLs)).
		Msg("Deleting project images")

	// keep going past failures so one bad object doesn't pin the rest
	var errs []error
	for _, url := range payload.URLs {
		if err := h.images.Remove(ctx, url); err != nil {
			log.Error().
				Err(err).
				Str("project_id", payload.ProjectID).
				Str("url", url).
				Msg("Failed to delete project image")
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("delete images: %w", err)
	}

	log.Info().
		Str("project_id", payload.ProjectID).
		Msg("Project images deleted")

	return nil
}
