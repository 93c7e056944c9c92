package client

import (
	"context"
	"sync"
)

// Notebook is a local, newest-first copy of a user's notes that stays in
// step with the server through its own Create and Delete calls.
type Notebook struct {
	client  *Client
	session *Session

	mu    sync.RWMutex
	notes []Note
}

// NewNotebook returns an empty notebook. Call Refresh to load it.
func NewNotebook(c *Client, s *Session) *Notebook {
	return &Notebook{client: c, session: s}
}

// Refresh replaces the local list with the server's.
func (nb *Notebook) Refresh(ctx context.Context) error {
	list, err := nb.client.ListNotes(ctx, nb.session)
	if err != nil {
		return err
	}
	nb.mu.Lock()
	nb.notes = list
	nb.mu.Unlock()
	return nil
}

// Create stores a note and puts it first in the local list.
func (nb *Notebook) Create(ctx context.Context, title, content string) (*Note, error) {
	note, err := nb.client.CreateNote(ctx, nb.session, title, content)
	if err != nil {
		return nil, err
	}
	nb.mu.Lock()
	nb.notes = append([]Note{*note}, nb.notes...)
	nb.mu.Unlock()
	return note, nil
}

// Delete removes a note on the server, then locally. On error the local
// list is untouched.
func (nb *Notebook) Delete(ctx context.Context, id string) error {
	if err := nb.client.DeleteNote(ctx, nb.session, id); err != nil {
		return err
	}
	nb.mu.Lock()
	defer nb.mu.Unlock()
	kept := nb.notes[:0]
	for _, n := range nb.notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	nb.notes = kept
	return nil
}

// Notes returns a copy of the local list.
func (nb *Notebook) Notes() []Note {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	out := make([]Note, len(nb.notes))
	copy(out, nb.notes)
	return out
}

// Len returns the number of notes held locally.
func (nb *Notebook) Len() int {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	return len(nb.notes)
}
