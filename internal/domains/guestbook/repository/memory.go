package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"portfolio-backend/internal/domains/guestbook/model"
	"portfolio-backend/internal/shared/utils"
)

// MemoryRepository backs DB_DRIVER=memory and the tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]model.Entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[uuid.UUID]model.Entry)}
}

func (r *MemoryRepository) Create(_ context.Context, e *model.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.ID] = *e
	return nil
}

func (r *MemoryRepository) List(_ context.Context, page, limit int) ([]model.Entry, int, error) {
	r.mu.RLock()
	all := make([]model.Entry, 0, len(r.entries))
	for _, e := range r.entries {
		all = append(all, e)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() > all[j].ID.String()
	})

	start, ok := utils.PageOffset(page, limit)
	if !ok || start >= len(all) {
		return []model.Entry{}, len(all), nil
	}
	end := min(start+limit, len(all))
	return all[start:end], len(all), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return model.ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}
