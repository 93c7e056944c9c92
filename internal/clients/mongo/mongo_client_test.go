package mongo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"note-keeper/internal/config"
	"note-keeper/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	msgClientShouldBeNil = "client should be nil on connection failure"
	msgDBShouldBeNil     = "db should be nil on connection failure"
	MongoTestURI         = "mongodb://invalid/?connectTimeoutMS=1&serverSelectionTimeoutMS=1"
)

var errPing = errors.New("ping refused")

// stubDriver implements the driver interface for testing
type stubDriver struct {
	connectErr  error
	pingFails   int32 // pings that fail before one succeeds; -1 fails forever
	pings       atomic.Int32
	disconnects atomic.Int32
}

func (s *stubDriver) Connect(_ context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	if s.connectErr != nil {
		return nil, s.connectErr
	}
	// v2 connects lazily, so this never touches the network
	return mongo.Connect(opts)
}

func (s *stubDriver) Ping(_ context.Context, _ *mongo.Client) error {
	n := s.pings.Add(1)
	if s.pingFails < 0 || n <= s.pingFails {
		return errPing
	}
	return nil
}

func (s *stubDriver) Disconnect(_ context.Context, _ *mongo.Client) error {
	s.disconnects.Add(1)
	return nil
}

// withStubDriver temporarily replaces the global driver with a stub for testing
func withStubDriver(t *testing.T, stub *stubDriver) {
	t.Helper()
	oldDrv, oldDelay := drv, pingRetryDelay
	drv = stub
	pingRetryDelay = time.Millisecond
	reset()
	t.Cleanup(func() {
		drv, pingRetryDelay = oldDrv, oldDelay
		reset()
	})
}

func testConfig(attempts uint) config.Config {
	return config.Config{
		MongoURI:             MongoTestURI,
		MongoDBName:          "test",
		MongoConnectAttempts: attempts,
		LogLevel:             "error",
		LogFormat:            "json",
	}
}

func TestMongoClientIdempotency(t *testing.T) {
	withStubDriver(t, &stubDriver{connectErr: context.DeadlineExceeded})

	cfg := testConfig(3)
	log, err := logger.Init(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	client1, db1, err1 := Init(ctx, cfg, log)
	client2, db2, err2 := Init(ctx, cfg, log)

	assert.Nil(t, client1, msgClientShouldBeNil)
	assert.Nil(t, db1, msgDBShouldBeNil)
	assert.Nil(t, client2, msgClientShouldBeNil)
	assert.Nil(t, db2, msgDBShouldBeNil)
	assert.ErrorIs(t, err1, context.DeadlineExceeded)
	assert.ErrorIs(t, err2, context.DeadlineExceeded)
}

func TestMongoClientPingRetries(t *testing.T) {
	stub := &stubDriver{pingFails: 2}
	withStubDriver(t, stub)

	cfg := testConfig(3)
	cli, database, err := Init(context.Background(), cfg, logger.L())

	require.NoError(t, err)
	assert.NotNil(t, cli)
	require.NotNil(t, database)
	assert.Equal(t, "test", database.Name())
	assert.Equal(t, int32(3), stub.pings.Load())
	assert.Same(t, cli, Client())
	assert.Same(t, database, DB())

	require.NoError(t, Shutdown(context.Background()))
	assert.Equal(t, int32(1), stub.disconnects.Load())
	assert.Nil(t, Client())
	assert.Nil(t, DB())
}

func TestMongoClientGivesUpAfterAttempts(t *testing.T) {
	stub := &stubDriver{pingFails: -1}
	withStubDriver(t, stub)

	cli, database, err := Init(context.Background(), testConfig(4), logger.L())

	assert.ErrorIs(t, err, errPing)
	assert.Nil(t, cli, msgClientShouldBeNil)
	assert.Nil(t, database, msgDBShouldBeNil)
	assert.Equal(t, int32(4), stub.pings.Load())
	assert.Equal(t, int32(1), stub.disconnects.Load(), "half-open client must be released")
}

func TestMongoClientZeroAttemptsPingsOnce(t *testing.T) {
	stub := &stubDriver{pingFails: -1}
	withStubDriver(t, stub)

	_, _, err := Init(context.Background(), testConfig(0), logger.L())

	assert.Error(t, err)
	assert.Equal(t, int32(1), stub.pings.Load())
}

func TestMongoClientConcurrency(t *testing.T) {
	stub := &stubDriver{}
	withStubDriver(t, stub)

	cfg := testConfig(1)
	ctx := context.Background()

	const goroutines = 10
	var wg sync.WaitGroup
	clients := make([]*mongo.Client, goroutines)

	wg.Add(goroutines)
	for i := range goroutines {
		go func(index int) {
			defer wg.Done()
			cli, _, err := Init(ctx, cfg, logger.L())
			assert.NoError(t, err)
			clients[index] = cli
		}(i)
	}
	wg.Wait()

	require.NotNil(t, clients[0])
	for i := 1; i < goroutines; i++ {
		assert.Same(t, clients[0], clients[i], "all callers should share one client")
	}
	assert.Equal(t, int32(1), stub.pings.Load())
}

func TestMongoClientShutdownIdempotency(t *testing.T) {
	withStubDriver(t, &stubDriver{connectErr: context.DeadlineExceeded})

	ctx := context.Background()
	_, _, err := Init(ctx, testConfig(1), logger.L())
	require.Error(t, err)

	err1 := Shutdown(ctx) // client was never up
	err2 := Shutdown(ctx) // already shut down
	err3 := Shutdown(ctx)

	assert.ErrorIs(t, err1, ErrNotInitialized)
	assert.ErrorIs(t, err2, ErrShutdown)
	assert.ErrorIs(t, err3, ErrShutdown)
	assert.Nil(t, Client())
	assert.Nil(t, DB())
}

func TestWithRepoTimeout(t *testing.T) {
	t.Run("adds deadline when none", func(t *testing.T) {
		ctx, cancel := WithRepoTimeout(context.Background(), time.Second)
		defer cancel()
		_, ok := ctx.Deadline()
		assert.True(t, ok)
	})

	t.Run("keeps sooner caller deadline", func(t *testing.T) {
		parent, parentCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer parentCancel()

		ctx, cancel := WithRepoTimeout(parent, time.Minute)
		defer cancel()
		assert.Equal(t, parent, ctx)
	})

	t.Run("tightens a later caller deadline", func(t *testing.T) {
		parent, parentCancel := context.WithTimeout(context.Background(), time.Hour)
		defer parentCancel()

		ctx, cancel := WithRepoTimeout(parent, time.Second)
		defer cancel()
		dl, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), dl, 500*time.Millisecond)
	})

	t.Run("cancelled parent is returned as is", func(t *testing.T) {
		parent, parentCancel := context.WithCancel(context.Background())
		parentCancel()

		ctx, cancel := WithRepoTimeout(parent, time.Second)
		defer cancel()
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})
}

// reset clears the singleton without going through Shutdown.
// test helper - do not call from prod code
func reset() {
	mu.Lock()
	defer mu.Unlock()

	client = nil
	db = nil
	initErr = nil

	initOnce = sync.Once{}
	shutdownOnce = sync.Once{}
}
