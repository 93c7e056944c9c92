package notes

import (
	"context"
	"errors"
	"log/slog"

	"note-keeper/internal/identity"
)

// Service handles notes business logic. It holds no note state of its own;
// every call goes to the repository.
type Service struct {
	repo Repository
	bus  Bus
	log  *slog.Logger
}

// NewService creates a new notes service
func NewService(repo Repository, bus Bus, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		bus:  bus,
		log:  log,
	}
}

// ListNotes returns every note owned by owner, newest first.
func (s *Service) ListNotes(ctx context.Context, owner identity.Owner) ([]*Note, error) {
	if owner.IsZero() {
		return nil, ErrMissingOwner
	}

	notes, err := s.repo.FindByOwner(ctx, owner.ID)
	if err != nil {
		s.log.Error(ErrListNotes.Error(), "error", err, "user_id", owner.ID)
		return nil, ErrListNotes
	}
	if notes == nil {
		notes = []*Note{}
	}

	return notes, nil
}

// CreateNote validates title and content and stores a new note for owner.
// Text is stored exactly as received. Nothing is written when validation fails.
func (s *Service) CreateNote(ctx context.Context, owner identity.Owner, title, content string) (*Note, error) {
	if owner.IsZero() {
		return nil, ErrMissingOwner
	}

	if rule, err := validateCreate(title, content); err != nil {
		s.log.Debug("note rejected", "rule", rule, "user_id", owner.ID)
		return nil, err
	}

	note, err := s.repo.Insert(ctx, &Note{
		Title:   title,
		Content: content,
		OwnerID: owner.ID,
	})
	if err != nil {
		s.log.Error(ErrCreateNote.Error(), "error", err, "user_id", owner.ID)
		return nil, ErrCreateNote
	}

	s.bus.Broadcast(ctx, NoteEvent{
		Type: EventCreated,
		Note: note,
	})

	return note, nil
}

// DeleteNote permanently removes the note with noteID if owner owns it.
// A note owned by someone else is reported as ErrNoteNotFound.
func (s *Service) DeleteNote(ctx context.Context, owner identity.Owner, noteID string) error {
	if owner.IsZero() {
		return ErrMissingOwner
	}

	if _, err := s.repo.FindOneByIDAndOwner(ctx, noteID, owner.ID); err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			s.log.Info("note not found for delete", "user_id", owner.ID, "note_id", noteID)
			return ErrNoteNotFound
		}
		s.log.Error(ErrDeleteNote.Error(), "error", err, "user_id", owner.ID, "note_id", noteID)
		return ErrDeleteNote
	}

	if err := s.repo.DeleteByID(ctx, noteID); err != nil {
		// lost a race with a concurrent delete of the same note
		if errors.Is(err, ErrNoteNotFound) {
			return ErrNoteNotFound
		}
		s.log.Error(ErrDeleteNote.Error(), "error", err, "user_id", owner.ID, "note_id", noteID)
		return ErrDeleteNote
	}

	s.bus.Broadcast(ctx, NoteEvent{
		Type: EventDeleted,
		Note: &Note{ID: noteID, OwnerID: owner.ID},
	})

	return nil
}
