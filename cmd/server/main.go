package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mongo "note-keeper/internal/clients/mongo" // mongo client singleton
	"note-keeper/internal/clients/redis"
	"note-keeper/internal/config"
	"note-keeper/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout  = 25 * time.Second
	limiterKeyPrefix = "notekeeper:limiter:"
	profilingAppName = "note-keeper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Create bootstrap logger for early errors
	bootstrapLog := log.New(os.Stderr, "bootstrap: ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLog.Printf("config load failed: %v", err)
		os.Exit(1)
	}

	logg, err := logger.Init(cfg)
	if err != nil {
		bootstrapLog.Printf("logger init failed: %v", err)
		os.Exit(1)
	}

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logg.Info(fmt.Sprintf(format, args...))
	})); err != nil {
		logg.Warn("automaxprocs", "error", err)
	}

	profiler := startProfiler(cfg, logg)

	_, db, err := mongo.Init(ctx, cfg, logg)
	if err != nil {
		logg.Error("mongo init", "error", err)
		os.Exit(1)
	}
	logg.Info("connected to mongo", "db", db.Name())

	var limiterStorage fiber.Storage
	var redisStorage *redis.Storage
	if cfg.RedisURL != "" {
		redisStorage, err = redis.New(ctx, cfg.RedisURL, limiterKeyPrefix)
		if err != nil {
			logg.Error("redis init", "error", err)
			os.Exit(1)
		}
		limiterStorage = redisStorage
		logg.Info("login limiter uses redis")
	}

	app, err := setupRouter(ctx, cfg, limiterStorage)
	if err != nil {
		logg.Error("router setup", "error", err)
		os.Exit(1)
	}

	logg.Info("starting NoteKeeper", "port", cfg.AppPort)
	portStr := fmt.Sprintf(":%d", cfg.AppPort)

	g.Go(func() error {
		err := app.Listen(portStr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		if redisStorage != nil {
			if err := redisStorage.Close(); err != nil {
				logg.Warn("redis close", "error", err)
			}
		}
		if profiler != nil {
			if err := profiler.Stop(); err != nil {
				logg.Warn("profiler stop", "error", err)
			}
		}
		return mongo.Shutdown(shutdownCtx)
	})

	// Wait and exit
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error("fatal", "error", err)
		os.Exit(1)
	}
	logg.Info("graceful shutdown complete")
}

// startProfiler pushes continuous profiles when an address is configured.
// Profiling is best effort; failures only log.
func startProfiler(cfg config.Config, logg *slog.Logger) *pyroscope.Profiler {
	if cfg.PyroscopeServerAddress == "" {
		return nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: profilingAppName,
		ServerAddress:   cfg.PyroscopeServerAddress,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		logg.Warn("pyroscope start", "error", err)
		return nil
	}
	logg.Info("continuous profiling enabled", "server", cfg.PyroscopeServerAddress)
	return profiler
}
