package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"taskmanager/internal/adapter/cache"
	"taskmanager/internal/adapter/database/memory"
	"taskmanager/internal/adapter/database/orm"
	"taskmanager/internal/adapter/database/postgres"
	pgrepository "taskmanager/internal/adapter/database/postgres/repository"
	"taskmanager/internal/adapter/database/sqlite"
	sqliterepository "taskmanager/internal/adapter/database/sqlite/repository"
	"taskmanager/internal/adapter/events"
	"taskmanager/internal/adapter/http/handler"
	"taskmanager/internal/core/port"
	"taskmanager/internal/core/service"
	"taskmanager/internal/core/telemetry"
	"taskmanager/pkg/auth"
	"taskmanager/pkg/config"

	"github.com/redis/go-redis/v9"
)

type Container struct {
	UserRepo port.UserRepository
	TaskRepo port.TaskRepository
	Broker   port.EventBroker
	Cache    port.CacheRepository

	AuthService port.AuthService
	UserService port.UserService
	TaskService port.TaskService

	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	TaskHandler         *handler.TaskHandler
	SubscriptionHandler *handler.SubscriptionHandler
	HealthHandler       *handler.HealthHandler

	redis   *redis.Client
	closers []func() error
}

// NewContainer opens the configured storage, cache and event backends and
// wires services and handlers on top of them. metrics may be nil.
func NewContainer(ctx context.Context, cfg *config.AppConfig, logger *config.Logger, metrics *telemetry.AppMetrics) (*Container, error) {
	c := &Container{}

	probe := telemetry.NewNoOpProbe()
	if metrics != nil {
		probe = telemetry.NewOTELProbe(slog.Default(), metrics)
	}

	if err := c.openStorage(ctx, cfg, probe); err != nil {
		return nil, c.closeAfter(err)
	}

	if err := c.openEvents(ctx, cfg, metrics); err != nil {
		return nil, c.closeAfter(err)
	}

	if err := c.openCache(ctx, cfg, metrics); err != nil {
		return nil, c.closeAfter(err)
	}

	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return nil, c.closeAfter(err)
	}

	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.JWTAccessExpiration,
		RefreshTTL:    cfg.JWTRefreshExpiration,
	})
	if err != nil {
		return nil, c.closeAfter(err)
	}

	taskService := service.NewTaskService(c.TaskRepo, c.Broker, probe)
	if c.Cache != nil {
		taskService.WithListCache(c.Cache, cfg.CacheTTL)
	}

	c.AuthService = service.NewAuthService(c.UserRepo, auth.NewCredentials(hasher, tokens))
	c.UserService = service.NewUserService(c.UserRepo)
	c.TaskService = taskService

	c.SubscriptionHandler, err = handler.NewSubscriptionHandler(c.Broker, logger, handler.DefaultHeartbeatInterval)
	if err != nil {
		return nil, c.closeAfter(err)
	}

	c.AuthHandler = handler.NewAuthHandler(c.AuthService, logger)
	c.UserHandler = handler.NewUserHandler(c.UserService, logger)
	c.TaskHandler = handler.NewTaskHandler(c.TaskService, logger)
	c.HealthHandler = handler.NewHealthHandler()

	return c, nil
}

// Close releases backends in reverse order of opening.
func (c *Container) Close() error {
	var errs []error

	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	c.closers = nil

	return errors.Join(errs...)
}

func (c *Container) openStorage(ctx context.Context, cfg *config.AppConfig, probe port.Telemetry) error {
	switch cfg.DBDriver {
	case config.DriverMemory:
		db := memory.NewDB()
		c.UserRepo = memory.NewUserRepository(db)
		c.TaskRepo = memory.NewTaskRepository(db)

	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}

		c.closers = append(c.closers, db.Close)
		c.UserRepo = pgrepository.NewUserRepository(db, probe)
		c.TaskRepo = pgrepository.NewTaskRepository(db, probe)

	case config.DriverORM:
		db, err := orm.NewDB(orm.Config{Path: cfg.DatabasePath, LogQueries: cfg.LogQueries})
		if err != nil {
			return err
		}

		c.closers = append(c.closers, func() error { return orm.Close(db) })
		c.UserRepo = orm.NewUserRepository(db)
		c.TaskRepo = orm.NewTaskRepository(db)

	case config.DriverSQLite:
		db, err := sqlite.NewDB(sqlite.Config{Path: cfg.DatabasePath, LogQueries: cfg.LogQueries})
		if err != nil {
			return err
		}

		c.closers = append(c.closers, db.Close)
		c.UserRepo = sqliterepository.NewUserRepository(db, probe)
		c.TaskRepo = sqliterepository.NewTaskRepository(db, probe)

	default:
		return fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	return nil
}

func (c *Container) openEvents(ctx context.Context, cfg *config.AppConfig, metrics *telemetry.AppMetrics) error {
	if cfg.EventsDriver != config.DriverRedis {
		c.Broker = events.NewBroker(events.DefaultBufferSize, metrics)
		c.closers = append(c.closers, c.Broker.Close)
		return nil
	}

	client, err := c.redisClient(ctx, cfg)
	if err != nil {
		return err
	}

	c.Broker = events.NewRedisBroker(client, events.DefaultBufferSize, metrics)
	c.closers = append(c.closers, c.Broker.Close)

	return nil
}

func (c *Container) openCache(ctx context.Context, cfg *config.AppConfig, metrics *telemetry.AppMetrics) error {
	if !cfg.CacheEnabled {
		return nil
	}

	if cfg.CacheDriver != config.DriverRedis {
		c.Cache = cache.NewInstrumented(cache.NewMemoryCache(cfg.CacheTTL, 2*cfg.CacheTTL), metrics, "task_list")
		c.closers = append(c.closers, c.Cache.Close)
		return nil
	}

	client, err := c.redisClient(ctx, cfg)
	if err != nil {
		return err
	}

	c.Cache = cache.NewInstrumented(cache.NewRedisCache(client, cfg.ServiceName), metrics, "task_list")
	c.closers = append(c.closers, c.Cache.Close)

	return nil
}

// redisClient is shared by the cache and the broker.
func (c *Container) redisClient(ctx context.Context, cfg *config.AppConfig) (*redis.Client, error) {
	if c.redis != nil {
		return c.redis, nil
	}

	client, err := cache.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	c.redis = client
	c.closers = append(c.closers, client.Close)

	return client, nil
}

func (c *Container) closeAfter(err error) error {
	if closeErr := c.Close(); closeErr != nil {
		return errors.Join(err, closeErr)
	}

	return err
}
