package notes

import (
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"note-keeper/cmd/server/ctxkeys"
	"note-keeper/cmd/server/testutil"
	"note-keeper/internal/config"
	"note-keeper/internal/identity"
	"note-keeper/internal/logger"
	"note-keeper/internal/services/auth"
	"note-keeper/internal/services/notes"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	gorillaws "github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

// MockHub implements the Hub interface for testing
type MockHub struct {
	mu             sync.Mutex
	subscribers    map[ulid.ULID]*notes.Subscriber
	subscribeCount int
}

func NewMockHub() *MockHub {
	return &MockHub{
		subscribers: make(map[ulid.ULID]*notes.Subscriber),
	}
}

func (m *MockHub) Subscribe(connULID ulid.ULID, ownerID string) (*notes.Subscriber, func()) {
	sub := &notes.Subscriber{
		OwnerID: ownerID,
		Ch:      make(chan notes.NoteEvent, 10),
		Done:    make(chan struct{}),
	}

	m.mu.Lock()
	m.subscribers[connULID] = sub
	m.subscribeCount++
	m.mu.Unlock()

	return sub, func() { m.Unsubscribe(connULID) }
}

func (m *MockHub) Unsubscribe(connULID ulid.ULID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub, exists := m.subscribers[connULID]; exists {
		close(sub.Ch)
		close(sub.Done)
		delete(m.subscribers, connULID)
	}
}

func (m *MockHub) GetSubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers)
}

// newTestAuthenticator returns the real token verifier keyed with testutil.TestSecret
func newTestAuthenticator() *auth.Service {
	return auth.NewService(nil, config.Config{JWTSecret: testutil.TestSecret}, logger.L())
}

// SetupWebSocketHandlersApp creates a test app whose stream route answers
// with the resolved owner instead of upgrading
func SetupWebSocketHandlersApp(t *testing.T) *fiber.App {
	t.Helper()

	app := testutil.CreateTestApp(t)
	wsHandlers := NewWebSocketHandlers(NewMockHub(), newTestAuthenticator(), 900)

	app.Get("/ws", wsHandlers.WSUpgrade, func(c *fiber.Ctx) error {
		owner := c.Locals(ctxkeys.OwnerKey).(identity.Owner)
		return c.JSON(fiber.Map{
			"user_id": owner.ID,
			"email":   owner.Email,
		})
	})

	return app
}

// startStreamServer serves the real stream handler on a loopback port and
// returns its ws:// base URL
func startStreamServer(t *testing.T, hub Hub, maxSessionSec int) string {
	t.Helper()

	app := testutil.CreateTestApp(t)
	wsHandlers := NewWebSocketHandlers(hub, newTestAuthenticator(), maxSessionSec)
	app.Get("/ws", wsHandlers.WSUpgrade, websocket.New(wsHandlers.WSNotesStream))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.ShutdownWithTimeout(time.Second)
	})

	return fmt.Sprintf("ws://%s/ws", ln.Addr().String())
}

// dialStream connects to the stream as userID
func dialStream(t *testing.T, baseURL, userID string) *gorillaws.Conn {
	t.Helper()

	token := testutil.MustJWT(t, userID, userID+"@example.com", time.Hour)
	conn, _, err := gorillaws.DefaultDialer.Dial(baseURL+"?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func subscribeDirect(t *testing.T, hub *MockHub, ownerID string) *notes.Subscriber {
	t.Helper()

	sub, cancel := hub.Subscribe(ulid.Make(), ownerID)
	t.Cleanup(cancel)
	return sub
}
