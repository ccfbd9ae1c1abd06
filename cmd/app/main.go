package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"courierhub/cmd"
	"courierhub/internal/adapters/out/postgres"
	redisadapter "courierhub/internal/adapters/out/redis"
	"courierhub/internal/pkg/logger"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	configs, err := cmd.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(configs.LogLevel, configs.LogFormat)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, configs, zl); err != nil {
		zl.Error("application stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, configs cmd.Config, zl *zap.Logger) error {
	gormDB, err := postgres.Open(ctx, configs.DB.DSN, postgres.PoolConfig{
		MaxOpenConns:    configs.DB.MaxOpenConns,
		MaxIdleConns:    configs.DB.MaxIdleConns,
		ConnMaxLifetime: configs.DB.ConnMaxLifetime,
		ConnMaxIdleTime: configs.DB.ConnMaxIdleTime,
	})
	if err != nil {
		return err
	}
	if err := postgres.Migrate(gormDB); err != nil {
		_ = postgres.Close(gormDB)
		return err
	}

	var redisClient *redis.Client
	if configs.Redis.URL != "" {
		redisClient, err = redisadapter.NewClient(ctx, configs.Redis.URL)
		if err != nil {
			_ = postgres.Close(gormDB)
			return err
		}
	} else {
		zl.Warn("redis is not configured, events are logged and the sweep runs unlocked")
	}

	app, err := cmd.NewCompositionRoot(configs, gormDB, redisClient, zl)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			zl.Warn("failed to release resources", zap.Error(err))
		}
	}()

	e, err := app.CreateRouter()
	if err != nil {
		return err
	}
	jobManager, err := app.CreateJobManager()
	if err != nil {
		return err
	}
	if err := jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	serveErr := make(chan error, 1)
	go func() {
		zl.Info("http server listening", zap.Int("port", configs.HTTPPort))
		if err := e.Start(fmt.Sprintf("0.0.0.0:%d", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
