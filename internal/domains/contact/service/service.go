package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/domains/contact/model"
	"portfolio-backend/internal/infrastructure/email"
)

// MailQueue hands the message to the worker; *queue.TaskPublisher implements it.
type MailQueue interface {
	EnqueueContactEmail(ctx context.Context, data email.ContactEmailData) error
}

type ContactService interface {
	// Submit validates req and queues it for delivery.
	Submit(ctx context.Context, req model.ContactRequest, ip string) error
}

type contactService struct {
	queue MailQueue
	now   func() time.Time
}

func NewContactService(queue MailQueue) ContactService {
	return &contactService{queue: queue, now: time.Now}
}

func (s *contactService) Submit(ctx context.Context, req model.ContactRequest, ip string) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	data := email.ContactEmailData{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		IPAddress: ip,
		SentAt:    s.now().UTC(),
	}
	if err := s.queue.EnqueueContactEmail(ctx, data); err != nil {
		return fmt.Errorf("queue contact message: %w", err)
	}

	log.Info().Str("ip", ip).Msg("Contact message queued")
	return nil
}
