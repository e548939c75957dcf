package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the whole application configuration.
// Every field is populated from environment variables (optionally via .env).
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Storage   StorageConfig
	MinIO     MinIOConfig
	SMTP      SMTPConfig
	GitHub    GitHubConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Worker    WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
	TrustProxy  bool // honor X-Forwarded-For / X-Real-IP
}

type DatabaseConfig struct {
	Driver   string // postgres, memory
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

// AdminConfig describes the single shared admin credential.
type AdminConfig struct {
	Username     string
	PasswordHash string // bcrypt

	// Failed logins per client IP within FailedLoginWindow before the IP is
	// locked out for LockoutDuration. Zero disables the lockout.
	MaxFailedLogins   int
	FailedLoginWindow time.Duration
	LockoutDuration   time.Duration
}

// StorageConfig selects the image store driver.
type StorageConfig struct {
	Driver       string // local, minio
	UploadDir    string // local driver root
	PublicPrefix string // URL prefix the local driver serves files under
	MaxImageSize int64  // bytes
	MaxWidth     int    // larger images are downscaled
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string // optional CDN / public base URL
}

type SMTPConfig struct {
	Host      string
	Port      string
	Username  string
	Password  string
	From      string
	ContactTo string
}

type GitHubConfig struct {
	Username string
	Token    string
	APIURL   string
	CacheTTL time.Duration
}

type CORSConfig struct {
	AllowOrigins []string
}

// RateLimitConfig applies to the public write endpoints (login, guestbook, contact).
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

type CacheConfig struct {
	ProjectTTL time.Duration
}

// WorkerConfig drives cmd/worker.
type WorkerConfig struct {
	Concurrency       int
	GitHubRefreshCron string // empty disables the periodic GitHub cache refresh
	HealthPort        string
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Portfolio API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			TrustProxy:  getEnvBool("TRUST_PROXY", false),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "portfolio"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
			MinConns: getEnvInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 120),
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

			MaxFailedLogins:   getEnvInt("ADMIN_MAX_FAILED_LOGINS", 5),
			FailedLoginWindow: getEnvDuration("ADMIN_FAILED_LOGIN_WINDOW", 15*time.Minute),
			LockoutDuration:   getEnvDuration("ADMIN_LOCKOUT_DURATION", 15*time.Minute),
		},
		Storage: StorageConfig{
			Driver:       getEnv("IMAGE_STORE_DRIVER", "local"),
			UploadDir:    getEnv("UPLOAD_DIR", "./uploads"),
			PublicPrefix: getEnv("UPLOAD_PUBLIC_PREFIX", "/uploads"),
			MaxImageSize: int64(getEnvInt("UPLOAD_MAX_IMAGE_MB", 5)) * 1024 * 1024,
			MaxWidth:     getEnvInt("UPLOAD_MAX_WIDTH", 1920),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "portfolio"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
		},
		SMTP: SMTPConfig{
			Host:      getEnv("SMTP_HOST", "localhost"),
			Port:      getEnv("SMTP_PORT", "1025"),
			Username:  getEnv("SMTP_USERNAME", ""),
			Password:  getEnv("SMTP_PASSWORD", ""),
			From:      getEnv("SMTP_FROM", "noreply@portfolio.dev"),
			ContactTo: getEnv("CONTACT_TO", ""),
		},
		GitHub: GitHubConfig{
			Username: getEnv("GITHUB_USERNAME", ""),
			Token:    getEnv("GITHUB_TOKEN", ""),
			APIURL:   getEnv("GITHUB_API_URL", "https://api.github.com"),
			CacheTTL: getEnvDuration("GITHUB_CACHE_TTL", 10*time.Minute),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnvList("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 5),
		},
		Cache: CacheConfig{
			ProjectTTL: getEnvDuration("PROJECT_CACHE_TTL", 5*time.Minute),
		},
		Worker: WorkerConfig{
			Concurrency:       getEnvInt("WORKER_CONCURRENCY", 5),
			GitHubRefreshCron: getEnv("GITHUB_REFRESH_CRON", "@every 30m"),
			HealthPort:        getEnv("WORKER_HEALTH_PORT", "9999"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks settings that must be explicit outside development.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "local", "minio":
	default:
		return fmt.Errorf("IMAGE_STORE_DRIVER must be local or minio, got %q", c.Storage.Driver)
	}
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or memory, got %q", c.Database.Driver)
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.Admin.PasswordHash == "" {
			return fmt.Errorf("ADMIN_PASSWORD_HASH must be set in production")
		}
		if c.SMTP.ContactTo == "" {
			fmt.Println("WARNING: CONTACT_TO not set - contact messages will be dropped")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
