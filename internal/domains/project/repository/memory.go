package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio-backend/internal/domains/project/model"
	"portfolio-backend/internal/shared/utils"
)

// MemoryRepository keeps projects in process memory. Units of work are
// serialized by a mutex and staged writes are committed only on success.
type MemoryRepository struct {
	writeMu sync.Mutex // serializes WithinPinLock and Delete

	mu       sync.RWMutex
	projects map[uuid.UUID]*model.Project

	now func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		projects: make(map[uuid.UUID]*model.Project),
		now:      time.Now,
	}
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, model.ErrProjectNotFound
	}
	return p.Clone(), nil
}

func (r *MemoryRepository) List(_ context.Context, page, limit int) ([]model.Project, int, error) {
	r.mu.RLock()
	all := make([]model.Project, 0, len(r.projects))
	for _, p := range r.projects {
		all = append(all, *p.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	total := len(all)
	offset, ok := utils.PageOffset(page, limit)
	if !ok || offset >= total {
		return []model.Project{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *MemoryRepository) ListPinned(_ context.Context) ([]model.Project, error) {
	r.mu.RLock()
	pinned := make([]model.Project, 0, model.MaxPinned)
	for _, p := range r.projects {
		if p.Pin {
			pinned = append(pinned, *p.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(pinned, func(i, j int) bool {
		if !pinned[i].UpdatedAt.Equal(pinned[j].UpdatedAt) {
			return pinned[i].UpdatedAt.After(pinned[j].UpdatedAt)
		}
		return pinned[i].ID.String() < pinned[j].ID.String()
	})
	if len(pinned) > model.MaxPinned {
		pinned = pinned[:model.MaxPinned]
	}
	return pinned, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) (*model.Project, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, model.ErrProjectNotFound
	}
	delete(r.projects, id)
	return p, nil
}

func (r *MemoryRepository) WithinPinLock(ctx context.Context, fn func(ctx context.Context, tx PinTx) error) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{repo: r, staged: make(map[uuid.UUID]*model.Project)}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	r.mu.Lock()
	for id, p := range tx.staged {
		r.projects[id] = p
	}
	r.mu.Unlock()
	return nil
}

type memoryTx struct {
	repo   *MemoryRepository
	staged map[uuid.UUID]*model.Project
}

// lookup sees staged writes first. Callers hold repo.writeMu, so committed
// state cannot change underneath.
func (tx *memoryTx) lookup(id uuid.UUID) (*model.Project, bool) {
	if p, ok := tx.staged[id]; ok {
		return p, true
	}
	tx.repo.mu.RLock()
	defer tx.repo.mu.RUnlock()
	p, ok := tx.repo.projects[id]
	return p, ok
}

func (tx *memoryTx) CountPinned(_ context.Context) (int, error) {
	tx.repo.mu.RLock()
	defer tx.repo.mu.RUnlock()

	count := 0
	for id, p := range tx.repo.projects {
		if _, ok := tx.staged[id]; ok {
			continue
		}
		if p.Pin {
			count++
		}
	}
	for _, p := range tx.staged {
		if p.Pin {
			count++
		}
	}
	return count, nil
}

func (tx *memoryTx) GetForUpdate(_ context.Context, id uuid.UUID) (*model.Project, error) {
	p, ok := tx.lookup(id)
	if !ok {
		return nil, model.ErrProjectNotFound
	}
	return p.Clone(), nil
}

func (tx *memoryTx) Insert(_ context.Context, p *model.Project) error {
	if err := prepareInsert(p, tx.repo.now); err != nil {
		return err
	}
	tx.staged[p.ID] = p.Clone()
	return nil
}

func (tx *memoryTx) Replace(_ context.Context, p *model.Project) error {
	stored, ok := tx.lookup(p.ID)
	if !ok {
		return model.ErrProjectNotFound
	}
	if err := prepareReplace(p, tx.repo.now); err != nil {
		return err
	}
	p.CreatedAt = stored.CreatedAt
	tx.staged[p.ID] = p.Clone()
	return nil
}
