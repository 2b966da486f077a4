package container

import (
	"context"
	"fmt"
	"time"

	"booklib-backend/internal/config"
	infraCache "booklib-backend/internal/infrastructure/cache"
	"booklib-backend/internal/infrastructure/database"
	"booklib-backend/internal/infrastructure/queue"
	"booklib-backend/internal/stats"
	"booklib-backend/pkg/cache"
	"booklib-backend/pkg/logger"

	bookHandler "booklib-backend/internal/domains/book/handler"
	bookRepo "booklib-backend/internal/domains/book/repository"
	bookService "booklib-backend/internal/domains/book/service"
	commentHandler "booklib-backend/internal/domains/comment/handler"
	commentRepo "booklib-backend/internal/domains/comment/repository"
	commentService "booklib-backend/internal/domains/comment/service"
	ratingHandler "booklib-backend/internal/domains/rating/handler"
	ratingRepo "booklib-backend/internal/domains/rating/repository"
	ratingService "booklib-backend/internal/domains/rating/service"
	savedHandler "booklib-backend/internal/domains/saved/handler"
	savedRepo "booklib-backend/internal/domains/saved/repository"
	savedService "booklib-backend/internal/domains/saved/service"
)

// Container is the root of the dependency graph. Everything in it is a
// singleton built once at startup; a failed build aborts the process.
type Container struct {
	// Infrastructure
	Config *config.Config
	DB     *database.PostgresDB
	Cache  cache.Cache
	Queue  *queue.Client

	// Stats core
	StatsEngine      *stats.Engine
	StatsCoordinator *stats.Coordinator

	// Repositories
	BookRepo    bookRepo.BookRepository
	RatingRepo  ratingRepo.RatingRepository
	CommentRepo commentRepo.CommentRepository
	SavedRepo   savedRepo.SavedRepository

	// Services
	BookService    bookService.ServiceInterface
	RatingService  ratingService.ServiceInterface
	CommentService commentService.CommentService
	SavedService   savedService.SavedService

	// Handlers
	BookHandler    *bookHandler.BookHandler
	RatingHandler  *ratingHandler.RatingHandler
	CommentHandler *commentHandler.CommentHandler
	SavedHandler   *savedHandler.SavedHandler
}

// NewContainer builds the full dependency graph: config, infrastructure,
// the stats core, then repositories, services, and handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	logger.Init(cfg.App.Environment)

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c.DB = database.NewPostgresDB(dbConfig)
	if err := c.DB.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Cache = redisCache

	c.Queue = queue.NewClient(cfg.Redis.Host)

	// Stats core: the engine recomputes, the coordinator is the only
	// writer of the denormalized columns.
	c.StatsEngine = stats.NewEngine()
	c.StatsCoordinator = stats.NewCoordinator(c.DB.Pool, c.StatsEngine, stats.Options{
		LockTimeout:  cfg.Stats.LockTimeout,
		MaxRetries:   cfg.Stats.MaxRetries,
		RetryBackoff: cfg.Stats.RetryBackoff,
	})

	// Repositories
	c.BookRepo = bookRepo.NewPostgresBookRepository(c.DB.Pool)
	c.RatingRepo = ratingRepo.NewPostgresRatingRepository(c.DB.Pool)
	c.CommentRepo = commentRepo.NewPostgresCommentRepository(c.DB.Pool)
	c.SavedRepo = savedRepo.NewPostgresSavedRepository(c.DB.Pool)

	// Services
	c.BookService = bookService.NewBookService(c.BookRepo, c.Cache, cfg.Stats.CacheTTL)
	c.RatingService = ratingService.NewRatingService(c.RatingRepo, c.BookRepo, c.StatsCoordinator, c.Cache)
	c.CommentService = commentService.NewCommentService(
		c.CommentRepo, c.BookRepo, c.StatsCoordinator, c.Cache, config.SpamDenylist())
	c.SavedService = savedService.NewSavedService(c.SavedRepo, c.BookRepo, c.StatsCoordinator, c.Cache)

	// Handlers
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.RatingHandler = ratingHandler.NewRatingHandler(c.RatingService)
	c.CommentHandler = commentHandler.NewCommentHandler(c.CommentService)
	c.SavedHandler = savedHandler.NewSavedHandler(c.SavedService)

	logger.Info("Container initialized", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	return c, nil
}

// Cleanup releases external connections. Call it on shutdown.
func (c *Container) Cleanup() {
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			logger.Error("Failed to close queue client", err)
		}
	}
	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				logger.Error("Failed to close redis", err)
			}
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logger.Error("Failed to close database", err)
		}
	}
}
