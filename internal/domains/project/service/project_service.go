package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/domains/project/model"
	"portfolio-backend/internal/domains/project/repository"
	"portfolio-backend/pkg/cache"
)

const imageFolder = "projects"

// Read cache keys. Enforcement never reads them.
// Every key carries the cache generation; a write bumps it.
const (
	cacheKeyGeneration = "projects:gen"
	cacheKeyPinned     = "projects:v%d:pinned"
	cacheKeyDetail     = "projects:v%d:detail:%s"
	cacheKeyList       = "projects:v%d:list:%d:%d"
	cacheKeyGenPattern = "projects:v%d:*"
)

type projectService struct {
	repo     repository.ProjectRepository
	images   ImageStore
	cleanup  CleanupQueue
	cache    cache.Cache // optional
	cacheTTL time.Duration
	guard    PinGuard
}

func NewProjectService(
	repo repository.ProjectRepository,
	images ImageStore,
	cleanup CleanupQueue,
	c cache.Cache,
	cacheTTL time.Duration,
) ProjectService {
	return &projectService{
		repo:     repo,
		images:   images,
		cleanup:  cleanup,
		cache:    c,
		cacheTTL: cacheTTL,
		guard:    NewPinGuard(model.MaxPinned),
	}
}

func (s *projectService) Create(ctx context.Context, req model.CreateProjectRequest) (*model.Project, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	uploads, err := s.storeImages(ctx, req.Features, req.Screenshots)
	if err != nil {
		return nil, err
	}

	p := buildProject(req, uploads)
	err = s.repo.WithinPinLock(ctx, func(ctx context.Context, tx repository.PinTx) error {
		if err := s.guard.CheckCreate(ctx, tx, p.Pin); err != nil {
			return err
		}
		return tx.Insert(ctx, p)
	})
	if err != nil {
		s.discard(ctx, "", uploads.all())
		return nil, err
	}

	s.invalidate(ctx)
	log.Info().Str("project_id", p.ID.String()).Bool("pin", p.Pin).Msg("project created")
	return p, nil
}

func (s *projectService) Update(ctx context.Context, id uuid.UUID, req model.UpdateProjectRequest) (*model.Project, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// uploads run before the serialized section so the pin lock is held briefly
	uploads, err := s.storeImages(ctx, req.Features, req.Screenshots)
	if err != nil {
		return nil, err
	}

	var updated *model.Project
	var orphaned []string
	err = s.repo.WithinPinLock(ctx, func(ctx context.Context, tx repository.PinTx) error {
		stored, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		requested := stored.Pin
		if req.Pin != nil {
			requested = *req.Pin
		}
		if err := s.guard.CheckUpdate(ctx, tx, stored.Pin, requested); err != nil {
			return err
		}

		merged, err := Reconcile(stored, req, uploads)
		if err != nil {
			return err
		}

		next := stored.Clone()
		req.Apply(next)
		next.Features = merged.Features
		next.Challenges = merged.Challenges
		next.Screenshots = merged.Screenshots
		if err := tx.Replace(ctx, next); err != nil {
			return err
		}

		updated, orphaned = next, merged.Orphaned
		return nil
	})
	if err != nil {
		s.discard(ctx, id.String(), uploads.all())
		return nil, err
	}

	s.discard(ctx, id.String(), orphaned)
	s.invalidate(ctx)
	log.Info().
		Str("project_id", id.String()).
		Bool("pin", updated.Pin).
		Int("orphaned_images", len(orphaned)).
		Msg("project updated")
	return updated, nil
}

func (s *projectService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.discard(ctx, id.String(), p.ImageURLs())
	s.invalidate(ctx)
	log.Info().Str("project_id", id.String()).Msg("project deleted")
	return nil
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	gen, cached := s.generation(ctx)
	key := fmt.Sprintf(cacheKeyDetail, gen, id)
	var hit model.Project
	if cached && s.cacheGet(ctx, key, &hit) {
		return &hit, nil
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cached {
		s.cacheSet(ctx, key, p)
	}
	return p, nil
}

type projectPage struct {
	Items []model.Project `json:"items"`
	Total int             `json:"total"`
}

func (s *projectService) List(ctx context.Context, page, limit int) ([]model.Project, int, error) {
	gen, cached := s.generation(ctx)
	key := fmt.Sprintf(cacheKeyList, gen, page, limit)
	var hit projectPage
	if cached && s.cacheGet(ctx, key, &hit) {
		return hit.Items, hit.Total, nil
	}

	items, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	if cached {
		s.cacheSet(ctx, key, projectPage{Items: items, Total: total})
	}
	return items, total, nil
}

func (s *projectService) ListPinned(ctx context.Context) ([]model.Project, error) {
	gen, cached := s.generation(ctx)
	key := fmt.Sprintf(cacheKeyPinned, gen)
	var hit []model.Project
	if cached && s.cacheGet(ctx, key, &hit) {
		return hit, nil
	}

	pinned, err := s.repo.ListPinned(ctx)
	if err != nil {
		return nil, err
	}
	if cached {
		s.cacheSet(ctx, key, pinned)
	}
	return pinned, nil
}

// storeImages validates every attached image before storing any of them.
func (s *projectService) storeImages(ctx context.Context, features []model.FeatureInput, screenshots []model.ScreenshotInput) (Uploads, error) {
	verr := &model.ValidationError{}
	for i, f := range features {
		if f.Image != nil {
			if err := s.images.Validate(f.Image.Data); err != nil {
				verr.Issues = append(verr.Issues, model.Issue{Field: fmt.Sprintf("features[%d].imageFile", i), Message: err.Error()})
			}
		}
	}
	for i, sc := range screenshots {
		if sc.Image != nil {
			if err := s.images.Validate(sc.Image.Data); err != nil {
				verr.Issues = append(verr.Issues, model.Issue{Field: fmt.Sprintf("screenshots[%d].imageFile", i), Message: err.Error()})
			}
		}
	}
	if len(verr.Issues) > 0 {
		return Uploads{}, verr
	}

	uploads := Uploads{
		Features:    make([]string, len(features)),
		Screenshots: make([]string, len(screenshots)),
	}
	store := func(img *model.ImageUpload, dst *string) error {
		if img == nil {
			return nil
		}
		url, err := s.images.Store(ctx, imageFolder, img.Data)
		if err != nil {
			return fmt.Errorf("store image %s: %w", img.Filename, err)
		}
		*dst = url
		return nil
	}

	for i, f := range features {
		if err := store(f.Image, &uploads.Features[i]); err != nil {
			s.discard(ctx, "", uploads.all())
			return Uploads{}, err
		}
	}
	for i, sc := range screenshots {
		if err := store(sc.Image, &uploads.Screenshots[i]); err != nil {
			s.discard(ctx, "", uploads.all())
			return Uploads{}, err
		}
	}
	return uploads, nil
}

func buildProject(req model.CreateProjectRequest, uploads Uploads) *model.Project {
	p := &model.Project{
		Title:       req.Title,
		Summary:     req.Summary,
		GithubURL:   req.GithubURL,
		Role:        req.Role,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Stack:       append([]string(nil), req.Stack...),
		Pin:         req.Pin,
		Features:    make([]model.Feature, 0, len(req.Features)),
		Challenges:  make([]model.Challenge, 0, len(req.Challenges)),
		Screenshots: make([]model.Screenshot, 0, len(req.Screenshots)),
	}
	for i, f := range req.Features {
		p.Features = append(p.Features, model.Feature{
			Title:       f.Title,
			Description: f.Description,
			ImageURL:    uploads.feature(i),
			ImageAlt:    f.ImageAlt,
		})
	}
	for _, c := range req.Challenges {
		p.Challenges = append(p.Challenges, model.Challenge{Title: c.Title, Description: c.Description})
	}
	p.Challenges = model.Renumber(p.Challenges)
	for i, sc := range req.Screenshots {
		p.Screenshots = append(p.Screenshots, model.Screenshot{
			ImageURL:    uploads.screenshot(i),
			ImageAlt:    sc.ImageAlt,
			Description: sc.Description,
		})
	}
	return p
}

// discard queues urls for removal. Failures only leave orphaned files behind.
func (s *projectService) discard(ctx context.Context, projectID string, urls []string) {
	if len(urls) == 0 || s.cleanup == nil {
		return
	}
	if err := s.cleanup.EnqueueDeleteImages(ctx, projectID, urls); err != nil {
		log.Warn().Err(err).Str("project_id", projectID).Strs("urls", urls).Msg("image cleanup not scheduled")
	}
}

// generation returns the cache generation reads should use.
// ok is false when there is no cache or it cannot be read.
func (s *projectService) generation(ctx context.Context) (gen int64, ok bool) {
	if s.cache == nil {
		return 0, false
	}
	if _, err := s.cache.Get(ctx, cacheKeyGeneration, &gen); err != nil {
		log.Warn().Err(err).Msg("cache generation read failed")
		return 0, false
	}
	return gen, true
}

// invalidate moves readers to a new generation. A read that loaded from
// storage before the write committed stores under the old generation,
// which nothing reads again; the old keys are dropped or expire.
func (s *projectService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	gen, err := s.cache.Increment(ctx, cacheKeyGeneration)
	if err != nil {
		log.Warn().Err(err).Msg("project cache invalidation failed")
		return
	}
	if err := s.cache.DeletePattern(ctx, fmt.Sprintf(cacheKeyGenPattern, gen-1)); err != nil {
		log.Warn().Err(err).Int64("generation", gen-1).Msg("stale project cache cleanup failed")
	}
}

func (s *projectService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	return found
}

func (s *projectService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
