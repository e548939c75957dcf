package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/config"
	authHandler "portfolio-backend/internal/domains/auth/handler"
	authService "portfolio-backend/internal/domains/auth/service"
	contactHandler "portfolio-backend/internal/domains/contact/handler"
	contactService "portfolio-backend/internal/domains/contact/service"
	githubHandler "portfolio-backend/internal/domains/github/handler"
	githubService "portfolio-backend/internal/domains/github/service"
	guestbookHandler "portfolio-backend/internal/domains/guestbook/handler"
	guestbookRepo "portfolio-backend/internal/domains/guestbook/repository"
	guestbookService "portfolio-backend/internal/domains/guestbook/service"
	projectHandler "portfolio-backend/internal/domains/project/handler"
	"portfolio-backend/internal/domains/project/model"
	projectRepo "portfolio-backend/internal/domains/project/repository"
	projectService "portfolio-backend/internal/domains/project/service"
	infraCache "portfolio-backend/internal/infrastructure/cache"
	"portfolio-backend/internal/infrastructure/database"
	"portfolio-backend/internal/infrastructure/queue"
	"portfolio-backend/internal/infrastructure/storage"
	"portfolio-backend/pkg/cache"
	"portfolio-backend/pkg/jwt"
)

// Container is the root of the dependency graph shared by cmd/api and cmd/worker.
//
// Initialization order: config, infrastructure, repositories, services, handlers.
type Container struct {
	// Infrastructure
	Config        *config.Config
	DB            *database.PostgresDB // nil when DB_DRIVER=memory
	Cache         cache.Cache
	JWTManager    *jwt.Manager
	AsynqClient   *asynq.Client
	TaskPublisher *queue.TaskPublisher
	ImageService  *storage.ImageService

	// Repositories
	ProjectRepo   projectRepo.ProjectRepository
	GuestbookRepo guestbookRepo.GuestbookRepository

	// Services
	ProjectService   projectService.ProjectService
	GuestbookService guestbookService.GuestbookService
	ContactService   contactService.ContactService
	GitHubService    githubService.GitHubService
	AuthService      authService.AuthService

	// Handlers
	ProjectHandler   *projectHandler.Handler
	GuestbookHandler *guestbookHandler.Handler
	ContactHandler   *contactHandler.Handler
	GitHubHandler    *githubHandler.Handler
	AuthHandler      *authHandler.Handler
}

// NewContainer loads the configuration and builds every dependency.
func NewContainer() (*Container, error) {
	log.Info().Msg("Initializing container")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	c := &Container{Config: cfg}
	if err := c.initInfrastructure(); err != nil {
		c.Cleanup()
		return nil, err
	}
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().
		Str("environment", cfg.App.Environment).
		Str("db_driver", cfg.Database.Driver).
		Str("image_store", cfg.Storage.Driver).
		Msg("Container initialized")
	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg := c.Config
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Database.Driver == "postgres" {
		dbConfig, err := config.LoadDatabaseConfig()
		if err != nil {
			return fmt.Errorf("failed to load database config: %w", err)
		}
		db := database.NewPostgresDB(dbConfig)
		if err := db.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		c.DB = db
	} else {
		log.Warn().Msg("DB_DRIVER=memory: data is lost on restart")
	}

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(ctx); err != nil {
		// reads fall through to the repository while Redis is down
		log.Warn().Err(err).Msg("Redis unavailable, caching degraded")
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	c.AsynqClient = asynq.NewClient(queue.RedisOpt(cfg.Redis))
	c.TaskPublisher = queue.NewTaskPublisher(c.AsynqClient)

	store, err := storage.NewObjectStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init image store: %w", err)
	}
	c.ImageService = storage.NewImageService(store, storage.NewImageProcessor(cfg.Storage.MaxImageSize, cfg.Storage.MaxWidth))

	return nil
}

func (c *Container) initRepositories() {
	if c.DB == nil {
		c.ProjectRepo = projectRepo.NewMemoryRepository()
		c.GuestbookRepo = guestbookRepo.NewMemoryRepository()
		return
	}
	c.ProjectRepo = projectRepo.NewPostgresRepository(c.DB.Pool)
	c.GuestbookRepo = guestbookRepo.NewPostgresRepository(c.DB.Pool)
}

func (c *Container) initServices() {
	cfg := c.Config

	c.ProjectService = projectService.NewProjectService(
		c.ProjectRepo,
		c.ImageService,
		c.TaskPublisher,
		c.Cache,
		cfg.Cache.ProjectTTL,
	)
	c.GuestbookService = guestbookService.NewGuestbookService(c.GuestbookRepo)
	c.ContactService = contactService.NewContactService(c.TaskPublisher)
	c.GitHubService = githubService.NewGitHubService(
		githubService.NewClient(cfg.GitHub.APIURL, cfg.GitHub.Token, nil),
		c.Cache,
		cfg.GitHub.Username,
		cfg.GitHub.CacheTTL,
	)
	c.AuthService = authService.NewAuthService(cfg.Admin, c.JWTManager, c.Cache)
}

func (c *Container) initHandlers() {
	c.ProjectHandler = projectHandler.NewHandler(c.ProjectService, c.maxProjectBodyBytes())
	c.GuestbookHandler = guestbookHandler.NewHandler(c.GuestbookService)
	c.ContactHandler = contactHandler.NewHandler(c.ContactService)
	c.GitHubHandler = githubHandler.NewHandler(c.GitHubService)
	c.AuthHandler = authHandler.NewHandler(c.AuthService)
}

// maxProjectBodyBytes fits every image slot at the size limit plus 1 MiB of text fields.
func (c *Container) maxProjectBodyBytes() int64 {
	slots := int64(model.MaxFeatures + model.MaxScreenshots)
	return slots*c.Config.Storage.MaxImageSize + 1<<20
}

// Cleanup releases connections; safe on a partially built container.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close asynq client")
		}
	}
	if rc, ok := c.Cache.(*infraCache.RedisCache); ok && rc != nil {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	log.Info().Msg("Container cleanup completed")
}
