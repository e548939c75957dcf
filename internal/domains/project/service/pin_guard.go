package service

import (
	"context"
	"fmt"

	"portfolio-backend/internal/domains/project/model"
)

// PinCounter reads the pinned count from storage. It must be called inside
// the repository's pin lock so the count cannot change before the write.
type PinCounter interface {
	CountPinned(ctx context.Context) (int, error)
}

// PinGuard enforces the global cap on pinned projects.
type PinGuard struct {
	Limit int
}

func NewPinGuard(limit int) PinGuard {
	return PinGuard{Limit: limit}
}

// CheckCreate admits a new project. Unpinned projects are always admitted.
func (g PinGuard) CheckCreate(ctx context.Context, c PinCounter, pin bool) error {
	if !pin {
		return nil
	}
	return g.admit(ctx, c)
}

// CheckUpdate admits an update. Only a false → true transition needs a free slot;
// staying pinned or unpinning is always legal.
func (g PinGuard) CheckUpdate(ctx context.Context, c PinCounter, stored, requested bool) error {
	if stored || !requested {
		return nil
	}
	return g.admit(ctx, c)
}

func (g PinGuard) admit(ctx context.Context, c PinCounter) error {
	pinned, err := c.CountPinned(ctx)
	if err != nil {
		return fmt.Errorf("count pinned projects: %w", err)
	}
	if pinned >= g.Limit {
		return &model.PinLimitError{Pinned: pinned, Limit: g.Limit}
	}
	return nil
}
