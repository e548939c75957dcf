package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-backend/internal/domains/project/model"
	"portfolio-backend/internal/domains/project/repository"
	"portfolio-backend/internal/infrastructure/cache"
)

type fakeImageStore struct {
	mu     sync.Mutex
	n      int
	stored []string
	fail   error
}

func (f *fakeImageStore) Validate(data []byte) error {
	if string(data) == "bad" {
		return errors.New("invalid image: not an image")
	}
	return nil
}

func (f *fakeImageStore) Store(_ context.Context, folder string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return "", f.fail
	}
	f.n++
	url := fmt.Sprintf("/uploads/%s/img-%d.png", folder, f.n)
	f.stored = append(f.stored, url)
	return url, nil
}

type fakeCleanup struct {
	mu   sync.Mutex
	urls []string
}

func (f *fakeCleanup) EnqueueDeleteImages(_ context.Context, _ string, urls []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, urls...)
	return nil
}

type fixture struct {
	svc     ProjectService
	repo    *repository.MemoryRepository
	images  *fakeImageStore
	cleanup *fakeCleanup
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:    repository.NewMemoryRepository(),
		images:  &fakeImageStore{},
		cleanup: &fakeCleanup{},
	}
	f.svc = NewProjectService(f.repo, f.images, f.cleanup, nil, time.Minute)
	return f
}

func png() *model.ImageUpload {
	return &model.ImageUpload{Filename: "shot.png", ContentType: "image/png", Data: []byte("png")}
}

func createRequest(title string, pin bool) model.CreateProjectRequest {
	return model.CreateProjectRequest{
		Title:       title,
		Summary:     "A project",
		GithubURL:   "https://github.com/me/" + title,
		Role:        "Developer",
		PeriodStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Stack:       []string{"Go"},
		Pin:         pin,
		Features: []model.FeatureInput{
			{Title: "Feature A", ImageAlt: "a", Image: png()},
			{Title: "Feature B", ImageAlt: "b", Image: png()},
		},
		Challenges: []model.ChallengeInput{{Title: "Challenge", Description: "Hard"}},
	}
}

// updateFrom builds an update that resends the stored collections without files.
func updateFrom(p *model.Project) model.UpdateProjectRequest {
	req := model.UpdateProjectRequest{}
	for _, f := range p.Features {
		req.Features = append(req.Features, model.FeatureInput{Title: f.Title, Description: f.Description, ImageAlt: f.ImageAlt})
	}
	for _, c := range p.Challenges {
		req.Challenges = append(req.Challenges, model.ChallengeInput{Number: c.Number, Title: c.Title, Description: c.Description})
	}
	for _, s := range p.Screenshots {
		req.Screenshots = append(req.Screenshots, model.ScreenshotInput{ImageAlt: s.ImageAlt, Description: s.Description})
	}
	return req
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func TestCreate_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := createRequest("portfolio", false)
	req.Stack = []string{"Go", "go", " Postgres "}
	created, err := f.svc.Create(ctx, req)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "portfolio", got.Title)
	assert.Equal(t, []string{"Go", "Postgres"}, got.Stack)
	require.Len(t, got.Features, 2)
	require.Len(t, got.Challenges, 1)
	assert.Equal(t, 1, got.Challenges[0].Number)
	assert.NotEmpty(t, got.Features[0].ImageURL)
	assert.NotEqual(t, got.Features[0].ImageURL, got.Features[1].ImageURL)
	assert.Empty(t, got.Screenshots)
	assert.False(t, got.Pin)
}

func TestCreate_Boundaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	four := createRequest("four", false)
	for len(four.Features) < 4 {
		four.Features = append(four.Features, model.FeatureInput{Title: "x", ImageAlt: "x", Image: png()})
	}
	_, err := f.svc.Create(ctx, four)
	assert.ErrorIs(t, err, model.ErrInvalidProject)

	noChallenges := createRequest("none", false)
	noChallenges.Challenges = nil
	_, err = f.svc.Create(ctx, noChallenges)
	assert.ErrorIs(t, err, model.ErrInvalidProject)

	noScreenshots := createRequest("ok", false)
	noScreenshots.Screenshots = []model.ScreenshotInput{}
	_, err = f.svc.Create(ctx, noScreenshots)
	assert.NoError(t, err)

	// rejected requests never reach the image store
	assert.Len(t, f.images.stored, 2)
}

func TestCreate_InvalidImageRejectedBeforeAnyUpload(t *testing.T) {
	f := newFixture(t)

	req := createRequest("p", false)
	req.Features[1].Image = &model.ImageUpload{Filename: "x.txt", Data: []byte("bad")}
	_, err := f.svc.Create(context.Background(), req)

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "features[1].imageFile", verr.Issues[0].Field)
	assert.Empty(t, f.images.stored)
}

func TestCreate_StorageFailureIsNotAValidationError(t *testing.T) {
	f := newFixture(t)
	f.images.fail = errors.New("disk full")

	_, err := f.svc.Create(context.Background(), createRequest("p", false))
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrInvalidProject)
	assert.ErrorContains(t, err, "disk full")
}

func TestCreate_PinLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < model.MaxPinned; i++ {
		_, err := f.svc.Create(ctx, createRequest(fmt.Sprintf("p%d", i), true))
		require.NoError(t, err)
	}

	_, err := f.svc.Create(ctx, createRequest("fourth", true))
	var perr *model.PinLimitError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, 3, perr.Pinned)
	assert.Equal(t, 3, perr.Limit)

	// the rejected create wrote nothing and its uploads are queued for cleanup
	_, total, err := f.svc.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, f.cleanup.urls, 2)

	// unpinned creates are unaffected
	_, err = f.svc.Create(ctx, createRequest("unpinned", false))
	assert.NoError(t, err)
}

func TestUpdate_ConcurrentPromotion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const alreadyPinned = 1
	const candidates = 12
	for i := 0; i < alreadyPinned; i++ {
		_, err := f.svc.Create(ctx, createRequest(fmt.Sprintf("pinned%d", i), true))
		require.NoError(t, err)
	}
	var ids []*model.Project
	for i := 0; i < candidates; i++ {
		p, err := f.svc.Create(ctx, createRequest(fmt.Sprintf("c%d", i), false))
		require.NoError(t, err)
		ids = append(ids, p)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted, rejected := 0, 0
	start := make(chan struct{})
	for _, p := range ids {
		wg.Add(1)
		go func(p *model.Project) {
			defer wg.Done()
			req := updateFrom(p)
			req.Pin = boolPtr(true)
			<-start
			_, err := f.svc.Update(ctx, p.ID, req)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, model.ErrPinLimitExceeded):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(p)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, model.MaxPinned-alreadyPinned, admitted)
	assert.Equal(t, candidates-admitted, rejected)

	pinned, err := f.svc.ListPinned(ctx)
	require.NoError(t, err)
	assert.Len(t, pinned, model.MaxPinned)
}

func TestUpdate_PinnedStaysLegalAtLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var last *model.Project
	for i := 0; i < model.MaxPinned; i++ {
		p, err := f.svc.Create(ctx, createRequest(fmt.Sprintf("p%d", i), true))
		require.NoError(t, err)
		last = p
	}

	// editing a pinned project keeps it pinned without a new slot
	req := updateFrom(last)
	title := "renamed"
	req.Title = &title
	updated, err := f.svc.Update(ctx, last.ID, req)
	require.NoError(t, err)
	assert.True(t, updated.Pin)
	assert.Equal(t, "renamed", updated.Title)

	// unpinning is always legal
	req = updateFrom(last)
	req.Pin = boolPtr(false)
	updated, err = f.svc.Update(ctx, last.ID, req)
	require.NoError(t, err)
	assert.False(t, updated.Pin)
}

func TestUpdate_RenumbersChallenges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := createRequest("p", false)
	req.Challenges = []model.ChallengeInput{
		{Number: 1, Title: "one", Description: "1"},
		{Number: 2, Title: "two", Description: "2"},
		{Number: 3, Title: "three", Description: "3"},
	}
	p, err := f.svc.Create(ctx, req)
	require.NoError(t, err)

	upd := updateFrom(p)
	upd.Challenges = []model.ChallengeInput{upd.Challenges[0], upd.Challenges[2]}
	updated, err := f.svc.Update(ctx, p.ID, upd)
	require.NoError(t, err)

	require.Len(t, updated.Challenges, 2)
	assert.Equal(t, model.Challenge{Number: 1, Title: "one", Description: "1"}, updated.Challenges[0])
	assert.Equal(t, model.Challenge{Number: 2, Title: "three", Description: "3"}, updated.Challenges[1])
}

func TestUpdate_ReconcilesImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, createRequest("p", false))
	require.NoError(t, err)
	firstURL := p.Features[0].ImageURL
	secondURL := p.Features[1].ImageURL

	// title only: the stored image is carried forward
	req := updateFrom(p)
	req.Features[0].Title = "Renamed feature"
	updated, err := f.svc.Update(ctx, p.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Renamed feature", updated.Features[0].Title)
	assert.Equal(t, firstURL, updated.Features[0].ImageURL)
	assert.Empty(t, f.cleanup.urls)

	// a new file replaces it and the old image is queued for removal
	req = updateFrom(updated)
	req.Features[0].Image = png()
	updated, err = f.svc.Update(ctx, p.ID, req)
	require.NoError(t, err)
	assert.NotEqual(t, firstURL, updated.Features[0].ImageURL)
	assert.Equal(t, secondURL, updated.Features[1].ImageURL)
	assert.Equal(t, []string{firstURL}, f.cleanup.urls)

	// dropping the second feature orphans its image
	req = updateFrom(updated)
	req.Features = req.Features[:1]
	_, err = f.svc.Update(ctx, p.ID, req)
	require.NoError(t, err)
	assert.Equal(t, []string{firstURL, secondURL}, f.cleanup.urls)
}

func TestUpdate_NewItemWithoutImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, createRequest("p", false))
	require.NoError(t, err)

	req := updateFrom(p)
	req.Features = append(req.Features, model.FeatureInput{Title: "third", ImageAlt: "c"})
	_, err = f.svc.Update(ctx, p.ID, req)

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "features[2].imageFile", verr.Issues[0].Field)

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Features, 2, "failed update leaves the project untouched")
}

func TestUpdate_ScalarSemantics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := createRequest("p", true)
	end := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	req.PeriodEnd = &end
	req.Screenshots = []model.ScreenshotInput{{ImageAlt: "s", Image: png()}}
	p, err := f.svc.Create(ctx, req)
	require.NoError(t, err)

	// absent scalars, stack and pin keep stored values; absent screenshots clear them
	upd := updateFrom(p)
	upd.Screenshots = nil
	updated, err := f.svc.Update(ctx, p.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, p.Title, updated.Title)
	assert.Equal(t, p.Stack, updated.Stack)
	assert.True(t, updated.Pin)
	require.NotNil(t, updated.PeriodEnd)
	assert.Empty(t, updated.Screenshots)
	assert.Contains(t, f.cleanup.urls, p.Screenshots[0].ImageURL)

	// explicitly cleared end date
	upd = updateFrom(updated)
	upd.PeriodEndSet = true
	updated, err = f.svc.Update(ctx, p.ID, upd)
	require.NoError(t, err)
	assert.Nil(t, updated.PeriodEnd)
	assert.True(t, updated.UpdatedAt.After(p.UpdatedAt) || updated.UpdatedAt.Equal(p.UpdatedAt))
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
}

func TestUpdateAndDelete_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := uuid.New()

	req := model.UpdateProjectRequest{
		Features:   []model.FeatureInput{{Title: "f", ImageAlt: "a", Image: png()}},
		Challenges: []model.ChallengeInput{{Title: "c", Description: "d"}},
	}
	_, err := f.svc.Update(ctx, id, req)
	assert.ErrorIs(t, err, model.ErrProjectNotFound)
	// the upload made before the lock is discarded
	assert.Len(t, f.cleanup.urls, 1)

	assert.ErrorIs(t, f.svc.Delete(ctx, id), model.ErrProjectNotFound)
	_, err = f.svc.Get(ctx, id)
	assert.ErrorIs(t, err, model.ErrProjectNotFound)
}

func TestDelete_QueuesImageCleanup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, createRequest("p", false))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, p.ID))
	assert.ElementsMatch(t, p.ImageURLs(), f.cleanup.urls)

	_, err = f.svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, model.ErrProjectNotFound)
}

func TestReadCacheInvalidatedOnMutation(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := repository.NewMemoryRepository()
	svc := NewProjectService(repo, &fakeImageStore{}, &fakeCleanup{}, cache.NewRedisCacheFromClient(client), time.Minute)
	ctx := context.Background()

	p, err := svc.Create(ctx, createRequest("p", true))
	require.NoError(t, err)

	_, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	_, err = svc.ListPinned(ctx)
	require.NoError(t, err)
	_, _, err = svc.List(ctx, 1, 10)
	require.NoError(t, err)
	gen, err := mr.Get("projects:gen")
	require.NoError(t, err)
	require.Equal(t, "1", gen)
	assert.True(t, mr.Exists("projects:v1:detail:"+p.ID.String()))
	assert.True(t, mr.Exists("projects:v1:pinned"))
	assert.True(t, mr.Exists("projects:v1:list:1:10"))

	req := updateFrom(p)
	req.Pin = boolPtr(false)
	_, err = svc.Update(ctx, p.ID, req)
	require.NoError(t, err)

	assert.False(t, mr.Exists("projects:v1:detail:"+p.ID.String()))
	assert.False(t, mr.Exists("projects:v1:pinned"))
	assert.False(t, mr.Exists("projects:v1:list:1:10"))

	pinned, err := svc.ListPinned(ctx)
	require.NoError(t, err)
	assert.Empty(t, pinned)
	assert.True(t, mr.Exists("projects:v2:pinned"))
}

// pausingRepo blocks the first GetByID after it has read storage.
type pausingRepo struct {
	repository.ProjectRepository
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func (r *pausingRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	p, err := r.ProjectRepository.GetByID(ctx, id)
	r.once.Do(func() {
		close(r.loaded)
		<-r.release
	})
	return p, err
}

func TestReadCacheIgnoresReadsThatRaceAWrite(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &pausingRepo{
		ProjectRepository: repository.NewMemoryRepository(),
		loaded:            make(chan struct{}),
		release:           make(chan struct{}),
	}
	svc := NewProjectService(repo, &fakeImageStore{}, &fakeCleanup{}, cache.NewRedisCacheFromClient(client), time.Minute)
	ctx := context.Background()

	p, err := svc.Create(ctx, createRequest("before", false))
	require.NoError(t, err)

	// a reader loads the old row, then stalls before filling the cache
	done := make(chan *model.Project)
	go func() {
		got, err := svc.Get(ctx, p.ID)
		assert.NoError(t, err)
		done <- got
	}()
	<-repo.loaded

	req := updateFrom(p)
	req.Title = strPtr("after")
	_, err = svc.Update(ctx, p.ID, req)
	require.NoError(t, err)

	close(repo.release)
	assert.Equal(t, "before", (<-done).Title)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
}
