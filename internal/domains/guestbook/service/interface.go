package service

import (
	"context"

	"github.com/google/uuid"

	"portfolio-backend/internal/domains/guestbook/model"
)

type GuestbookService interface {
	Create(ctx context.Context, req model.CreateEntryRequest) (*model.Entry, error)
	List(ctx context.Context, page, limit int) ([]model.Entry, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
