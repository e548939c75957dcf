package repository

import (
	"context"

	"github.com/google/uuid"

	"portfolio-backend/internal/domains/guestbook/model"
)

type GuestbookRepository interface {
	Create(ctx context.Context, e *model.Entry) error
	// List returns entries newest first together with the total count.
	List(ctx context.Context, page, limit int) ([]model.Entry, int, error)
	// Delete returns model.ErrEntryNotFound when nothing was removed.
	Delete(ctx context.Context, id uuid.UUID) error
}
