package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"portfolio-backend/internal/domains/project/model"
)

// ProjectRepository persists Project aggregates.
type ProjectRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	// List returns one page ordered by created_at DESC, id plus the total count.
	List(ctx context.Context, page, limit int) ([]model.Project, int, error)
	// ListPinned returns pinned projects ordered by updated_at DESC, id.
	ListPinned(ctx context.Context) ([]model.Project, error)
	// Delete removes the project and returns it so its images can be cleaned up.
	Delete(ctx context.Context, id uuid.UUID) (*model.Project, error)

	// WithinPinLock runs fn as a unit of work serialized against every other
	// unit of work. Nothing fn wrote is kept if it returns an error.
	WithinPinLock(ctx context.Context, fn func(ctx context.Context, tx PinTx) error) error
}

// PinTx is the view of storage available inside WithinPinLock.
type PinTx interface {
	CountPinned(ctx context.Context) (int, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Project, error)
	// Insert validates p, assigns ID, CreatedAt and UpdatedAt, and writes it.
	Insert(ctx context.Context, p *model.Project) error
	// Replace validates p and overwrites the stored scalars and collections.
	// It bumps UpdatedAt and fails with ErrProjectNotFound if p.ID is unknown.
	Replace(ctx context.Context, p *model.Project) error
}

// prepareInsert applies the shared Insert preconditions.
func prepareInsert(p *model.Project, now func() time.Time) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Challenges = model.Renumber(p.Challenges)
	if err := p.Validate(); err != nil {
		return err
	}
	ts := now().UTC().Truncate(time.Microsecond)
	p.CreatedAt = ts
	p.UpdatedAt = ts
	return nil
}

func prepareReplace(p *model.Project, now func() time.Time) error {
	p.Challenges = model.Renumber(p.Challenges)
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = now().UTC().Truncate(time.Microsecond)
	return nil
}
