package notes

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"note-keeper/internal/logger"

	"github.com/oklog/ulid/v2"
)

// Subscriber represents a connection that can receive note events
type Subscriber struct {
	OwnerID string
	Ch      chan NoteEvent
	Done    chan struct{}
}

// ConnInfo holds connection metadata
type ConnInfo struct {
	ID          ulid.ULID
	ConnectedAt time.Time
	Subscriber  *Subscriber
}

// ownerSubs holds subscribers for a specific owner
type ownerSubs struct {
	mu sync.RWMutex
	m  map[ulid.ULID]ConnInfo
}

// Hub fans note events out to the owner's live connections. It implements
// Bus and never stores notes.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*ownerSubs
	connIndex   map[ulid.ULID]string
	bufferSize  int
	dropped     uint64
}

// NewHub creates a new event hub with configurable buffer size
func NewHub(bufferSize int) *Hub {
	return &Hub{
		subscribers: make(map[string]*ownerSubs),
		connIndex:   make(map[ulid.ULID]string),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers connULID for events of ownerID. The returned func
// unsubscribes it.
func (h *Hub) Subscribe(connULID ulid.ULID, ownerID string) (*Subscriber, func()) {
	log := logger.L()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("subscribing connection", "conn_id", connULID.String(), "user_id", ownerID)
	}

	sub := &Subscriber{
		OwnerID: ownerID,
		Ch:      make(chan NoteEvent, h.bufferSize),
		Done:    make(chan struct{}),
	}

	// bucket insert happens under the hub lock so a concurrent Unsubscribe
	// cannot drop the bucket between lookup and insert
	h.mu.Lock()
	bucket, exists := h.subscribers[ownerID]
	if !exists {
		bucket = &ownerSubs{m: make(map[ulid.ULID]ConnInfo)}
		h.subscribers[ownerID] = bucket
	}
	bucket.mu.Lock()
	bucket.m[connULID] = ConnInfo{
		ID:          connULID,
		ConnectedAt: time.Now(),
		Subscriber:  sub,
	}
	bucket.mu.Unlock()
	h.connIndex[connULID] = ownerID
	h.mu.Unlock()

	return sub, func() { h.Unsubscribe(connULID) }
}

// Unsubscribe removes a subscriber from the hub and closes its channels.
// Calling it twice is a no-op.
func (h *Hub) Unsubscribe(connULID ulid.ULID) {
	log := logger.L()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("unsubscribing connection", "conn_id", connULID.String())
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ownerID, ok := h.connIndex[connULID]
	if !ok {
		return
	}
	delete(h.connIndex, connULID)

	bucket := h.subscribers[ownerID]
	if bucket == nil {
		return
	}

	bucket.mu.Lock()
	info, exists := bucket.m[connULID]
	if exists {
		delete(bucket.m, connULID)
		close(info.Subscriber.Ch)
		close(info.Subscriber.Done)
	}
	empty := len(bucket.m) == 0
	bucket.mu.Unlock()

	if empty {
		delete(h.subscribers, ownerID)
	}
}

// Broadcast delivers ev to every subscriber of ev.Note.OwnerID
func (h *Hub) Broadcast(_ context.Context, ev NoteEvent) {
	if ev.Note == nil {
		return
	}

	log := logger.L()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("broadcasting event", "user_id", ev.Note.OwnerID, "event_type", ev.Type)
	}

	bucket := h.bucket(ev.Note.OwnerID)
	if bucket == nil {
		return
	}

	bucket.mu.RLock()
	for _, info := range bucket.m {
		sendOrDrop(info.Subscriber.Ch, ev, func() {
			atomic.AddUint64(&h.dropped, 1)
			log.Warn("outbox full, dropping event", "conn_id", info.ID.String(), "user_id", info.Subscriber.OwnerID, "event_type", ev.Type)
		})
	}
	bucket.mu.RUnlock()
}

// GetSubscriberCount returns the current number of subscribers
func (h *Hub) GetSubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, bucket := range h.subscribers {
		bucket.mu.RLock()
		total += len(bucket.m)
		bucket.mu.RUnlock()
	}
	return total
}

// sendOrDrop is the only place that can decide to drop an event.
func sendOrDrop(ch chan NoteEvent, ev NoteEvent, onDrop func()) {
	select {
	case ch <- ev:
	default:
		onDrop()
	}
}

// Stats returns current counters for observability / tests.
func (h *Hub) Stats() (subscribers int, dropped uint64) {
	return h.GetSubscriberCount(), atomic.LoadUint64(&h.dropped)
}

func (h *Hub) bucket(ownerID string) *ownerSubs {
	h.mu.RLock()
	b := h.subscribers[ownerID]
	h.mu.RUnlock()
	return b
}
