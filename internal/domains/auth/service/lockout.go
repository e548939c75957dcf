package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/config"
	"portfolio-backend/pkg/cache"
)

const (
	failedLoginKey = "auth:failed_login:%s"
	loginLockedKey = "auth:login_locked:%s"
)

// loginLockout counts failed admin logins per client IP.
// Cache errors fail open: a broken Redis never blocks the admin.
type loginLockout struct {
	cache       cache.Cache
	maxAttempts int64
	window      time.Duration
	duration    time.Duration
}

func newLoginLockout(c cache.Cache, cfg config.AdminConfig) *loginLockout {
	return &loginLockout{
		cache:       c,
		maxAttempts: int64(cfg.MaxFailedLogins),
		window:      cfg.FailedLoginWindow,
		duration:    cfg.LockoutDuration,
	}
}

func (l *loginLockout) enabled() bool {
	return l.cache != nil && l.maxAttempts > 0 && l.duration > 0
}

// locked reports whether ip is locked out and for how much longer.
func (l *loginLockout) locked(ctx context.Context, ip string) (time.Duration, bool) {
	if !l.enabled() {
		return 0, false
	}
	key := fmt.Sprintf(loginLockedKey, ip)
	isLocked, err := l.cache.Exists(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("Login lockout check failed")
		return 0, false
	}
	if !isLocked {
		return 0, false
	}

	remaining, err := l.cache.TTL(ctx, key)
	if err != nil || remaining <= 0 {
		remaining = l.duration
	}
	return remaining, true
}

// recordFailure counts one failed attempt and locks ip once the limit is reached.
func (l *loginLockout) recordFailure(ctx context.Context, ip string) {
	if !l.enabled() {
		return
	}
	attemptKey := fmt.Sprintf(failedLoginKey, ip)

	attempts, err := l.cache.Increment(ctx, attemptKey)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count failed login")
		return
	}
	// window starts at the first failure
	if attempts == 1 && l.window > 0 {
		if err := l.cache.Expire(ctx, attemptKey, l.window); err != nil {
			log.Warn().Err(err).Msg("Failed to set failed login window")
		}
	}

	log.Info().
		Str("ip", ip).
		Int64("attempts", attempts).
		Msg("Failed admin login counted")

	if attempts < l.maxAttempts {
		return
	}
	if err := l.cache.Set(ctx, fmt.Sprintf(loginLockedKey, ip), "1", l.duration); err != nil {
		log.Warn().Err(err).Msg("Failed to lock out client")
		return
	}
	_ = l.cache.Delete(ctx, attemptKey)

	log.Warn().
		Str("ip", ip).
		Dur("lockout", l.duration).
		Msg("Admin login locked for client")
}

func (l *loginLockout) reset(ctx context.Context, ip string) {
	if !l.enabled() {
		return
	}
	if err := l.cache.Delete(ctx, fmt.Sprintf(failedLoginKey, ip)); err != nil {
		log.Warn().Err(err).Msg("Failed to reset failed login counter")
	}
}
