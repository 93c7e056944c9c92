package notes

import "errors"

// ErrNoteNotFound is returned when a note does not exist or belongs to
// another owner. Both cases are reported identically.
var ErrNoteNotFound = errors.New("note not found")

// ErrMissingOwner is returned when an operation is invoked without an
// authenticated owner.
var ErrMissingOwner = errors.New("missing owner identity")

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("invalid note")

// ErrStorage matches every *StorageError via errors.Is.
var ErrStorage = errors.New("note storage failure")

// ValidationError describes rejected note input. Message is safe to show
// to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validation failures, one per rule.
var (
	ErrTitleContentRequired = &ValidationError{Field: "title,content", Message: "Title and content are required"}
	ErrTitleTooLong         = &ValidationError{Field: "title", Message: "Title must be less than 100 characters"}
	ErrContentTooLong       = &ValidationError{Field: "content", Message: "Content must be less than 1000 characters"}
)

// StorageError reports that the store failed. It never carries the driver
// error; that is logged where it happens.
type StorageError struct {
	Op string
}

func (e *StorageError) Error() string {
	return "failed to " + e.Op
}

// Is makes every StorageError match ErrStorage.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// ErrListNotes is returned when notes listing fails.
var ErrListNotes = &StorageError{Op: "list notes"}

// ErrCreateNote is returned when note creation fails.
var ErrCreateNote = &StorageError{Op: "create note"}

// ErrDeleteNote is returned when note deletion fails.
var ErrDeleteNote = &StorageError{Op: "delete note"}

// ErrCreateNotesRepo is returned when notes repository creation fails.
var ErrCreateNotesRepo = errors.New("failed to create notes repository")
