package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"portfolio-backend/pkg/cache"
)

// HealthChecker performs startup health checks
type HealthChecker struct {
	cache cache.Cache
}

// startServices verifies Redis, the only hard dependency of the worker,
// and exposes /health and /ready for the orchestrator.
func startServices(c cache.Cache, port string) (*http.Server, error) {
	log.Info().Msg("Portfolio worker starting")

	checker := &HealthChecker{cache: c}
	if err := checker.checkAll(); err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           healthRouter(checker),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("[Health] starting health check server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("[Health] failed to start")
		}
	}()
	return srv, nil
}

func (h *HealthChecker) checkAll() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"Redis Connection", h.checkRedis},
	}

	for _, check := range checks {
		if err := check.fn(); err != nil {
			log.Error().Err(err).Str("check", check.name).Msg("startup check failed")
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		log.Info().Str("check", check.name).Msg("startup check OK")
	}
	return nil
}

func (h *HealthChecker) checkRedis() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.cache.Ping(ctx)
}

func healthRouter(h *HealthChecker) http.Handler {
	r := gin.New()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "service": "portfolio-worker"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := h.checkRedis(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "NOT_READY", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "READY"})
	})
	return r
}
