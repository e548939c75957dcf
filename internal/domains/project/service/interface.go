package service

import (
	"context"

	"github.com/google/uuid"

	"portfolio-backend/internal/domains/project/model"
)

type ProjectService interface {
	Create(ctx context.Context, req model.CreateProjectRequest) (*model.Project, error)
	Update(ctx context.Context, id uuid.UUID, req model.UpdateProjectRequest) (*model.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Get(ctx context.Context, id uuid.UUID) (*model.Project, error)
	List(ctx context.Context, page, limit int) ([]model.Project, int, error)
	ListPinned(ctx context.Context) ([]model.Project, error)
}

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	Validate(data []byte) error
	Store(ctx context.Context, folder string, data []byte) (string, error)
}

// CleanupQueue schedules best-effort removal of images no project references.
type CleanupQueue interface {
	EnqueueDeleteImages(ctx context.Context, projectID string, urls []string) error
}
