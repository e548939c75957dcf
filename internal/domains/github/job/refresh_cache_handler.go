package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/domains/github/service"
)

// RefreshCacheHandler repopulates the GitHub cache on the scheduler's cadence.
type RefreshCacheHandler struct {
	service service.GitHubService
}

func NewRefreshCacheHandler(svc service.GitHubService) *RefreshCacheHandler {
	return &RefreshCacheHandler{service: svc}
}

func (h *RefreshCacheHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	if err := h.service.Refresh(ctx); err != nil {
		if errors.Is(err, service.ErrNotConfigured) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		log.Warn().Err(err).Msg("GitHub cache refresh failed")
		return err
	}
	log.Info().Msg("GitHub cache refreshed")
	return nil
}
