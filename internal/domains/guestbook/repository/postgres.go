package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-backend/internal/domains/guestbook/model"
	"portfolio-backend/internal/shared/utils"
)

type postgresGuestbookRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) GuestbookRepository {
	return &postgresGuestbookRepository{pool: pool}
}

func (r *postgresGuestbookRepository) Create(ctx context.Context, e *model.Entry) error {
	query := `
		INSERT INTO guestbook_entries (id, name, message, website, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.pool.Exec(ctx, query, e.ID, e.Name, e.Message, e.Website, e.CreatedAt); err != nil {
		return fmt.Errorf("failed to create guestbook entry: %w", err)
	}
	return nil
}

func (r *postgresGuestbookRepository) List(ctx context.Context, page, limit int) ([]model.Entry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM guestbook_entries`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count guestbook entries: %w", err)
	}
	offset, ok := utils.PageOffset(page, limit)
	if !ok || offset >= total {
		return []model.Entry{}, total, nil
	}

	query := `
		SELECT id, name, message, website, created_at
		FROM guestbook_entries
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list guestbook entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.Entry, 0, limit)
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Message, &e.Website, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan guestbook entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate guestbook entries: %w", err)
	}

	return entries, total, nil
}

func (r *postgresGuestbookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM guestbook_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete guestbook entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEntryNotFound
	}
	return nil
}
