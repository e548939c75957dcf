package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/infrastructure/email"
)

type ContactEmailHandler struct {
	emailService email.EmailService
}

func NewContactEmailHandler(emailService email.EmailService) *ContactEmailHandler {
	return &ContactEmailHandler{
		emailService: emailService,
	}
}

func (h *ContactEmailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload email.ContactEmailData
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ContactEmail payload")
		// a malformed payload will never succeed
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Info().
		Str("from", payload.Email).
		Msg("Relaying contact message")

	if err := h.emailService.SendContactEmail(ctx, payload); err != nil {
		log.Error().Err(err).Str("from", payload.Email).Msg("Failed to send contact email")
		return fmt.Errorf("send contact email: %w", err)
	}

	log.Info().
		Str("from", payload.Email).
		Msg("Contact message relayed")

	return nil
}
