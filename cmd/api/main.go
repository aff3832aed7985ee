package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	httpadapter "taskmanager/internal/adapter/http"
	"taskmanager/internal/adapter/telemetry"
	"taskmanager/pkg/config"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	logger, err := config.NewLogger(cfg.ServiceName, cfg.LokiURL, cfg.IsProduction())
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	ctx := context.Background()

	tel, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}, slog.Default())
	if err != nil {
		logger.Logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	container, err := httpadapter.NewContainer(ctx, cfg, logger, tel.AppMetrics)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize dependencies", zap.Error(err), zap.String("db_driver", cfg.DBDriver))
	}

	router := httpadapter.NewRouter(cfg, container, logger, tel.AppMetrics)
	server := httpadapter.NewServer(cfg, router)

	// Open subscription streams would otherwise hold Shutdown until the timeout.
	server.OnShutdown(func() {
		_ = container.Broker.Close()
	})

	go func() {
		if err := server.Start(); err != nil {
			logger.Logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info(ctx, "Server started",
		zap.String("addr", server.Addr()),
		zap.String("environment", cfg.Environment),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("events_driver", cfg.EventsDriver),
		zap.Bool("cache_enabled", cfg.CacheEnabled),
		zap.Bool("rate_limit_enabled", cfg.RateLimitEnabled),
		zap.Bool("https_enforced", cfg.EnforceHTTPS))

	wait := gfshutdown.GracefulShutdown(
		ctx,
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http": func(ctx context.Context) error {
				logger.Info(ctx, "Shutting down gracefully...")
				return errors.Join(server.Shutdown(ctx), container.Close())
			},
			"telemetry": func(ctx context.Context) error {
				return tel.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	_ = logger.Sync()
	os.Exit(exitCode)
}
