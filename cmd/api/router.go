package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/shared/middleware"
	"portfolio-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	cfg := c.Config
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.ClientIP(cfg.App.TrustProxy),
		middleware.Logger(),
		middleware.CORS(cfg.CORS.AllowOrigins),
	)

	// the MinIO driver returns absolute bucket URLs instead
	if cfg.Storage.Driver == "local" {
		router.Static(cfg.Storage.PublicPrefix, cfg.Storage.UploadDir)
	}

	writeLimit := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst).Middleware()

	v1 := router.Group("/api/v1")
	v1.GET("/health", healthCheckHandler(c))

	admin := v1.Group("", middleware.AdminAuth(c.JWTManager)...)

	c.AuthHandler.RegisterRoutes(v1, writeLimit)
	c.ProjectHandler.RegisterRoutes(v1, admin)
	c.GuestbookHandler.RegisterRoutes(v1, admin, writeLimit)
	c.ContactHandler.RegisterRoutes(v1, writeLimit)
	c.GitHubHandler.RegisterRoutes(v1)

	return router
}

// healthCheckHandler reports 503 only when the database is down; Redis is optional.
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		dbStatus := "memory"
		if appCtx.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			dbStatus = "ok"
			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = "error: " + err.Error()
				health["status"] = "degraded"
			}
		}

		redisStatus := "ok"
		{
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = "error: " + err.Error()
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if health["status"] != "ok" {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, health)
	}
}
