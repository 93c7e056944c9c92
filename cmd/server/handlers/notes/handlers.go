package notes

import (
	"context"

	"note-keeper/cmd/server/handlers/handlerutil"
	"note-keeper/internal/identity"
	"note-keeper/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Service defines the interface for notes service
type Service interface {
	ListNotes(ctx context.Context, owner identity.Owner) ([]*notes.Note, error)
	CreateNote(ctx context.Context, owner identity.Owner, title, content string) (*notes.Note, error)
	DeleteNote(ctx context.Context, owner identity.Owner, noteID string) error
}

// Handlers contains the notes HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new notes handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// List handles notes listing
// @Summary List the caller's notes, newest first
// @Tags notes
// @Produce json
// @Security Bearer
// @Success 200 {object} notes.ListNotesResponse
// @Failure 401 {object} httperr.E
// @Failure 500 {object} httperr.E
// @Router /api/notes [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	owner, err := handlerutil.GetOwner(c)
	if err != nil {
		return err
	}

	list, err := h.service.ListNotes(c.UserContext(), owner)
	if err != nil {
		return handlerutil.HandleServiceError(err, "List", owner, "")
	}

	return c.JSON(notes.ListNotesResponse{Notes: list})
}

// Create handles note creation
// @Summary Create a new note
// @Description The owner is always the authenticated caller; a userId in the body is ignored.
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body notes.CreateNoteRequest true "Create note request"
// @Success 201 {object} notes.NoteResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 500 {object} httperr.E
// @Router /api/notes [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	owner, err := handlerutil.GetOwner(c)
	if err != nil {
		return err
	}

	var req notes.CreateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Create"); err != nil {
		return err
	}

	note, err := h.service.CreateNote(c.UserContext(), owner, req.Title, req.Content)
	if err != nil {
		return handlerutil.HandleServiceError(err, "Create", owner, "")
	}

	return c.Status(fiber.StatusCreated).JSON(notes.NoteResponse{
		Message: "Note created successfully",
		Note:    note,
	})
}

// Delete handles note deletion
// @Summary Delete a note
// @Tags notes
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 200 {object} notes.MessageResponse
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Failure 500 {object} httperr.E
// @Router /api/notes/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	owner, err := handlerutil.GetOwner(c)
	if err != nil {
		return err
	}

	noteID := c.Params("id")
	if err := h.service.DeleteNote(c.UserContext(), owner, noteID); err != nil {
		return handlerutil.HandleServiceError(err, "Delete", owner, noteID)
	}

	return c.JSON(notes.MessageResponse{Message: "Note deleted successfully"})
}
