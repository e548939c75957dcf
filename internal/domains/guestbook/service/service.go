package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/domains/guestbook/model"
	"portfolio-backend/internal/domains/guestbook/repository"
)

type guestbookService struct {
	repo repository.GuestbookRepository
	now  func() time.Time
}

func NewGuestbookService(repo repository.GuestbookRepository) GuestbookService {
	return &guestbookService{repo: repo, now: time.Now}
}

// Create normalizes and validates req; validation failures are returned as
// ozzo validation.Errors.
func (s *guestbookService) Create(ctx context.Context, req model.CreateEntryRequest) (*model.Entry, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry := req.ToEntry(s.now())
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}

	log.Info().Str("entry_id", entry.ID.String()).Msg("Guestbook entry created")
	return entry, nil
}

func (s *guestbookService) List(ctx context.Context, page, limit int) ([]model.Entry, int, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *guestbookService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("entry_id", id.String()).Msg("Guestbook entry deleted")
	return nil
}
