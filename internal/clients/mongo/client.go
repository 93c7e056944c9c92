package mongo

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"note-keeper/internal/config"

	"github.com/avast/retry-go/v4"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrNotInitialized is returned by Shutdown when Init never produced a client.
var ErrNotInitialized = errors.New("mongo client not initialized")

// ErrShutdown is returned by Shutdown after the first call.
var ErrShutdown = errors.New("mongo client already shut down")

var (
	drv driver = mongoDriver{}

	client  *mongo.Client
	db      *mongo.Database
	initErr error
	mu      sync.RWMutex

	initOnce     sync.Once
	shutdownOnce sync.Once

	pingTimeout    = 5 * time.Second
	pingRetryDelay = 500 * time.Millisecond
)

// Init connects to MongoDB and pings the primary, retrying the ping up to
// MONGO_CONNECT_ATTEMPTS times. Only the first call does any work; later
// calls return the same client, database and error.
func Init(ctx context.Context, cfg config.Config, log *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	initOnce.Do(func() {
		initErr = connect(ctx, cfg, log)
	})

	mu.RLock()
	defer mu.RUnlock()
	return client, db, initErr
}

func connect(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetConnectTimeout(10 * time.Second).
		SetAppName("note-keeper")

	cli, err := drv.Connect(ctx, opts)
	if err != nil {
		log.Error("failed to connect to mongo", "error", err)
		return err
	}

	attempts := cfg.MongoConnectAttempts
	if attempts == 0 {
		attempts = 1
	}

	err = retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			defer cancel()
			return drv.Ping(pingCtx, cli)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(pingRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("mongo ping failed, retrying", "attempt", n+1, "of", attempts, "error", err)
		}),
	)
	if err != nil {
		log.Error("failed to ping mongo", "error", err, "attempts", attempts)
		_ = drv.Disconnect(context.WithoutCancel(ctx), cli)
		return err
	}

	mu.Lock()
	client = cli
	db = cli.Database(cfg.MongoDBName)
	mu.Unlock()

	log.Info("successfully connected to mongo", "db", cfg.MongoDBName)
	return nil
}

// Client returns the singleton MongoDB client instance.
func Client() *mongo.Client {
	mu.RLock()
	defer mu.RUnlock()
	return client
}

// DB returns the singleton MongoDB database instance.
func DB() *mongo.Database {
	mu.RLock()
	defer mu.RUnlock()
	return db
}

// Shutdown disconnects the client. The first call reports ErrNotInitialized
// if there was nothing to close; every later call returns ErrShutdown.
func Shutdown(ctx context.Context) error {
	err := ErrShutdown
	shutdownOnce.Do(func() {
		err = disconnect(ctx)
	})
	return err
}

func disconnect(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if client == nil {
		return ErrNotInitialized
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := drv.Disconnect(ctx, client)
	client = nil
	db = nil
	return err
}
