package notes

import "context"

// Repository is the Note Store. Implementations assign ID, CreatedAt and
// UpdatedAt on Insert and report missing documents as ErrNoteNotFound.
type Repository interface {
	FindByOwner(ctx context.Context, ownerID string) ([]*Note, error)
	FindOneByIDAndOwner(ctx context.Context, id, ownerID string) (*Note, error)
	Insert(ctx context.Context, n *Note) (*Note, error)
	DeleteByID(ctx context.Context, id string) error
}

// Bus defines the interface for event broadcasting
type Bus interface {
	Broadcast(ctx context.Context, ev NoteEvent)
}
