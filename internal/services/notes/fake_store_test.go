package notes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// memStore is an in-memory Repository that mirrors the Mongo store's
// contract: generated ids, store-assigned timestamps, newest-first listing.
type memStore struct {
	mu     sync.Mutex
	seq    atomic.Int64
	notes  map[string]*Note
	writes int
	clock  func() time.Time
}

func newMemStore() *memStore {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := &memStore{notes: make(map[string]*Note)}
	s.clock = func() time.Time {
		// strictly increasing so ordering is deterministic
		return base.Add(time.Duration(s.seq.Load()) * time.Millisecond)
	}
	return s
}

func (s *memStore) FindByOwner(_ context.Context, ownerID string) ([]*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*Note{}
	for _, n := range s.notes {
		if n.OwnerID == ownerID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memStore) FindOneByIDAndOwner(_ context.Context, id, ownerID string) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok || n.OwnerID != ownerID {
		return nil, ErrNoteNotFound
	}
	cp := *n
	return &cp, nil
}

func (s *memStore) Insert(_ context.Context, n *Note) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.seq.Add(1)
	now := s.clock()
	stored := &Note{
		ID:        fmt.Sprintf("%024x", seq),
		Title:     n.Title,
		Content:   n.Content,
		OwnerID:   n.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.notes[stored.ID] = stored
	s.writes++

	cp := *stored
	return &cp, nil
}

func (s *memStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return ErrNoteNotFound
	}
	delete(s.notes, id)
	s.writes++
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

func (s *memStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// recordingBus collects broadcast events.
type recordingBus struct {
	mu     sync.Mutex
	events []NoteEvent
}

func (b *recordingBus) Broadcast(_ context.Context, ev NoteEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *recordingBus) all() []NoteEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]NoteEvent(nil), b.events...)
}
