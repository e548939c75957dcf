package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"portfolio-backend/pkg/cache"
)

var ErrNotConfigured = errors.New("github username is not configured")

const (
	cacheKeyProfile = "github:profile"
	cacheKeyRepos   = "github:repos"
)

// GitHubService serves the owner's public GitHub data through a Redis cache.
type GitHubService interface {
	Profile(ctx context.Context) (json.RawMessage, error)
	Repos(ctx context.Context) (json.RawMessage, error)
	// Refresh refetches everything and overwrites the cache.
	Refresh(ctx context.Context) error
}

type Fetcher interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
}

type gitHubService struct {
	client   Fetcher
	cache    cache.Cache
	username string
	ttl      time.Duration
	group    singleflight.Group
}

func NewGitHubService(client Fetcher, c cache.Cache, username string, ttl time.Duration) GitHubService {
	return &gitHubService{client: client, cache: c, username: username, ttl: ttl}
}

func (s *gitHubService) Profile(ctx context.Context) (json.RawMessage, error) {
	return s.cached(ctx, cacheKeyProfile, s.profilePath())
}

func (s *gitHubService) Repos(ctx context.Context) (json.RawMessage, error) {
	return s.cached(ctx, cacheKeyRepos, s.reposPath())
}

func (s *gitHubService) Refresh(ctx context.Context) error {
	if s.username == "" {
		return ErrNotConfigured
	}

	g, ctx := errgroup.WithContext(ctx)
	for key, path := range map[string]string{
		cacheKeyProfile: s.profilePath(),
		cacheKeyRepos:   s.reposPath(),
	} {
		g.Go(func() error {
			body, err := s.client.Get(ctx, path)
			if err != nil {
				return err
			}
			s.store(ctx, key, body)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refresh github cache: %w", err)
	}
	return nil
}

// cached is read-through; concurrent misses on one key share a single upstream call.
func (s *gitHubService) cached(ctx context.Context, key, path string) (json.RawMessage, error) {
	if s.username == "" {
		return nil, ErrNotConfigured
	}

	if s.cache != nil {
		var hit json.RawMessage
		found, err := s.cache.Get(ctx, key, &hit)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("github cache read failed")
		} else if found {
			return hit, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		body, err := s.client.Get(ctx, path)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, body)
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

func (s *gitHubService) store(ctx context.Context, key string, body json.RawMessage) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, body, s.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("github cache write failed")
	}
}

func (s *gitHubService) profilePath() string {
	return "/users/" + url.PathEscape(s.username)
}

func (s *gitHubService) reposPath() string {
	return s.profilePath() + "/repos?sort=updated&per_page=100&type=owner"
}
