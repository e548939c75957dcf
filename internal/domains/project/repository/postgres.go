package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"portfolio-backend/internal/domains/project/model"
	"portfolio-backend/internal/shared/utils"
	"portfolio-backend/pkg/database"
)

// pinLockKey is the pg_advisory_xact_lock key guarding the pinned count.
const pinLockKey int64 = 0x70696e6e6564 // "pinned"

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type postgresRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresRepository(pool *pgxpool.Pool) ProjectRepository {
	return &postgresRepository{pool: pool, now: time.Now}
}

const projectColumns = `id, title, summary, github_url, role, period_start, period_end,
	stack, pin, created_at, updated_at`

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return getProject(ctx, r.pool, id, false)
}

func (r *postgresRepository) List(ctx context.Context, page, limit int) ([]model.Project, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}
	offset, ok := utils.PageOffset(page, limit)
	if !ok || offset >= total {
		return []model.Project{}, total, nil
	}

	query := `SELECT ` + projectColumns + ` FROM projects
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`
	projects, err := queryProjects(ctx, r.pool, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *postgresRepository) ListPinned(ctx context.Context) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects
		WHERE pin
		ORDER BY updated_at DESC, id
		LIMIT $1`
	return queryProjects(ctx, r.pool, query, model.MaxPinned)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Project, error) {
		p, err := getProject(ctx, tx, id, true)
		if err != nil {
			return nil, err
		}
		// child rows go with ON DELETE CASCADE
		if _, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
			return nil, fmt.Errorf("delete project: %w", err)
		}
		return p, nil
	})
}

func (r *postgresRepository) WithinPinLock(ctx context.Context, fn func(ctx context.Context, tx PinTx) error) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		// held until commit/rollback; every pin-affecting write takes it first
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, pinLockKey); err != nil {
			return fmt.Errorf("acquire pin lock: %w", err)
		}
		return fn(ctx, &postgresTx{tx: tx, now: r.now})
	})
}

type postgresTx struct {
	tx  pgx.Tx
	now func() time.Time
}

func (t *postgresTx) CountPinned(ctx context.Context) (int, error) {
	var n int
	if err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM projects WHERE pin`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pinned: %w", err)
	}
	return n, nil
}

func (t *postgresTx) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return getProject(ctx, t.tx, id, true)
}

func (t *postgresTx) Insert(ctx context.Context, p *model.Project) error {
	if err := prepareInsert(p, t.now); err != nil {
		return err
	}

	_, err := t.tx.Exec(ctx, `
		INSERT INTO projects (id, title, summary, github_url, role, period_start, period_end,
			stack, pin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Title, p.Summary, p.GithubURL, p.Role, p.PeriodStart, p.PeriodEnd,
		pq.Array(p.Stack), p.Pin, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return writeChildren(ctx, t.tx, p, false)
}

func (t *postgresTx) Replace(ctx context.Context, p *model.Project) error {
	if err := prepareReplace(p, t.now); err != nil {
		return err
	}

	var createdAt time.Time
	err := t.tx.QueryRow(ctx, `
		UPDATE projects
		SET title = $2, summary = $3, github_url = $4, role = $5, period_start = $6,
			period_end = $7, stack = $8, pin = $9, updated_at = $10
		WHERE id = $1
		RETURNING created_at`,
		p.ID, p.Title, p.Summary, p.GithubURL, p.Role, p.PeriodStart, p.PeriodEnd,
		pq.Array(p.Stack), p.Pin, p.UpdatedAt,
	).Scan(&createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrProjectNotFound
	}
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	p.CreatedAt = createdAt

	return writeChildren(ctx, t.tx, p, true)
}

// writeChildren writes all sub-collection rows in one round trip.
func writeChildren(ctx context.Context, q dbtx, p *model.Project, replace bool) error {
	batch := &pgx.Batch{}
	if replace {
		batch.Queue(`DELETE FROM project_features WHERE project_id = $1`, p.ID)
		batch.Queue(`DELETE FROM project_challenges WHERE project_id = $1`, p.ID)
		batch.Queue(`DELETE FROM project_screenshots WHERE project_id = $1`, p.ID)
	}
	for i, f := range p.Features {
		batch.Queue(`INSERT INTO project_features (project_id, position, title, description, image_url, image_alt)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, i, f.Title, f.Description, f.ImageURL, f.ImageAlt)
	}
	for _, c := range p.Challenges {
		batch.Queue(`INSERT INTO project_challenges (project_id, number, title, description)
			VALUES ($1, $2, $3, $4)`,
			p.ID, c.Number, c.Title, c.Description)
	}
	for i, s := range p.Screenshots {
		batch.Queue(`INSERT INTO project_screenshots (project_id, position, image_url, image_alt, description)
			VALUES ($1, $2, $3, $4, $5)`,
			p.ID, i, s.ImageURL, s.ImageAlt, s.Description)
	}

	br := q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("write project children: %w", err)
		}
	}
	return br.Close()
}

func getProject(ctx context.Context, q dbtx, id uuid.UUID, forUpdate bool) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	p, err := scanProject(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	if err := loadChildren(ctx, q, []*model.Project{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func queryProjects(ctx context.Context, q dbtx, query string, args ...any) ([]model.Project, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var ptrs []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		ptrs = append(ptrs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if err := loadChildren(ctx, q, ptrs); err != nil {
		return nil, err
	}

	projects := make([]model.Project, 0, len(ptrs))
	for _, p := range ptrs {
		projects = append(projects, *p)
	}
	return projects, nil
}

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.ID, &p.Title, &p.Summary, &p.GithubURL, &p.Role, &p.PeriodStart, &p.PeriodEnd,
		&p.Stack, &p.Pin, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// loadChildren fills the sub-collections of projects with one batched round trip.
func loadChildren(ctx context.Context, q dbtx, projects []*model.Project) error {
	if len(projects) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*model.Project, len(projects))
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
		p.Features = []model.Feature{}
		p.Challenges = []model.Challenge{}
		p.Screenshots = []model.Screenshot{}
		ids = append(ids, p.ID.String())
	}

	batch := &pgx.Batch{}
	batch.Queue(`SELECT project_id, title, description, image_url, image_alt
		FROM project_features WHERE project_id = ANY($1::uuid[])
		ORDER BY project_id, position`, ids)
	batch.Queue(`SELECT project_id, number, title, description
		FROM project_challenges WHERE project_id = ANY($1::uuid[])
		ORDER BY project_id, number`, ids)
	batch.Queue(`SELECT project_id, image_url, image_alt, description
		FROM project_screenshots WHERE project_id = ANY($1::uuid[])
		ORDER BY project_id, position`, ids)

	br := q.SendBatch(ctx, batch)
	defer br.Close()

	err := collectChildren(br, func(rows pgx.Rows) error {
		var id uuid.UUID
		var f model.Feature
		if err := rows.Scan(&id, &f.Title, &f.Description, &f.ImageURL, &f.ImageAlt); err != nil {
			return err
		}
		byID[id].Features = append(byID[id].Features, f)
		return nil
	})
	if err != nil {
		return fmt.Errorf("load features: %w", err)
	}

	err = collectChildren(br, func(rows pgx.Rows) error {
		var id uuid.UUID
		var c model.Challenge
		if err := rows.Scan(&id, &c.Number, &c.Title, &c.Description); err != nil {
			return err
		}
		byID[id].Challenges = append(byID[id].Challenges, c)
		return nil
	})
	if err != nil {
		return fmt.Errorf("load challenges: %w", err)
	}

	err = collectChildren(br, func(rows pgx.Rows) error {
		var id uuid.UUID
		var s model.Screenshot
		if err := rows.Scan(&id, &s.ImageURL, &s.ImageAlt, &s.Description); err != nil {
			return err
		}
		byID[id].Screenshots = append(byID[id].Screenshots, s)
		return nil
	})
	if err != nil {
		return fmt.Errorf("load screenshots: %w", err)
	}

	return br.Close()
}

func collectChildren(br pgx.BatchResults, scan func(pgx.Rows) error) error {
	rows, err := br.Query()
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
