package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("IMAGE_STORE_DRIVER", "")
	t.Setenv("DB_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, int64(5*1024*1024), cfg.Storage.MaxImageSize)
	assert.Equal(t, 10*time.Minute, cfg.GitHub.CacheTTL)
	assert.Equal(t, "@every 30m", cfg.Worker.GitHubRefreshCron)
	assert.False(t, cfg.App.TrustProxy)
	assert.Equal(t, 5, cfg.Admin.MaxFailedLogins)
	assert.Equal(t, 15*time.Minute, cfg.Admin.LockoutDuration)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("TRUST_PROXY", "true")
	t.Setenv("GITHUB_CACHE_TTL", "90s")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.dev , ,https://b.dev")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.True(t, cfg.App.TrustProxy)
	assert.Equal(t, 90*time.Second, cfg.GitHub.CacheTTL)
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)
}

func TestValidate(t *testing.T) {
	t.Setenv("IMAGE_STORE_DRIVER", "ftp")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMAGE_STORE_DRIVER")

	t.Setenv("IMAGE_STORE_DRIVER", "local")
	t.Setenv("DB_DRIVER", "mysql")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")

	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abc")
	t.Setenv("CONTACT_TO", "me@example.com")
	_, err = Load()
	assert.NoError(t, err)
}
