package notes

import "time"

// Note is a short text note owned by exactly one user
type Note struct {
	ID        string    `json:"id" example:"683cdb8aa96ad71e8e075bd1"`
	Title     string    `json:"title" example:"Groceries"`
	Content   string    `json:"content" example:"Milk, eggs, coffee"`
	OwnerID   string    `json:"userId" example:"683cdb8aa96ad71e8e075bd0"`
	CreatedAt time.Time `json:"createdAt" example:"2025-06-01T23:00:26.005Z"`
	UpdatedAt time.Time `json:"updatedAt" example:"2025-06-01T23:00:26.005Z"`
}

// Event types published on the Bus
const (
	EventCreated = "created"
	EventDeleted = "deleted"
)

// NoteEvent represents an event that occurred on a note
type NoteEvent struct {
	Type string `json:"type"`
	Note *Note  `json:"note"`
}

// CreateNoteRequest is the body accepted when creating a note. It carries no
// owner field; the owner always comes from the verified identity.
type CreateNoteRequest struct {
	Title   string `json:"title" example:"Groceries"`
	Content string `json:"content" example:"Milk, eggs, coffee"`
}

// NoteResponse wraps a single note
type NoteResponse struct {
	Message string `json:"message,omitempty" example:"Note created successfully"`
	Note    *Note  `json:"note"`
}

// ListNotesResponse wraps the caller's notes, newest first
type ListNotesResponse struct {
	Notes []*Note `json:"notes"`
}

// MessageResponse is returned by operations without a payload
type MessageResponse struct {
	Message string `json:"message" example:"Note deleted successfully"`
}
