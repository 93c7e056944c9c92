package handlerutil

import (
	"errors"

	"note-keeper/cmd/server/ctxkeys"
	"note-keeper/cmd/server/handlers/httperr"
	"note-keeper/internal/identity"
	"note-keeper/internal/logger"
	"note-keeper/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// SetOwner stores the verified identity for downstream handlers
func SetOwner(c *fiber.Ctx, owner identity.Owner) {
	c.Locals(ctxkeys.OwnerKey, owner)
}

// GetOwner extracts the verified identity from fiber context
func GetOwner(c *fiber.Ctx) (identity.Owner, error) {
	owner, ok := c.Locals(ctxkeys.OwnerKey).(identity.Owner)
	if !ok || owner.IsZero() {
		logger.L().Error("owner not found in context", "handler", "GetOwner", "path", c.Path())
		return identity.Owner{}, httperr.Fail(httperr.ErrUnauthorized)
	}
	return owner, nil
}

// ParseAndValidateBody parses request body and validates it
func ParseAndValidateBody(c *fiber.Ctx, req any, validator *validator.Validate, handlerName string) error {
	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := validator.Struct(req); err != nil {
		logger.L().Warn("request validation failed", "handler", handlerName, "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// HandleServiceError maps notes service errors to HTTP errors. Only
// validation messages reach the client verbatim.
func HandleServiceError(err error, handlerName string, owner identity.Owner, noteID string) error {
	logFields := []any{"handler", handlerName, "user_id", owner.ID, "error", err}
	if noteID != "" {
		logFields = append(logFields, "note_id", noteID)
	}

	var vErr *notes.ValidationError
	switch {
	case errors.As(err, &vErr):
		logger.L().Info("note rejected", logFields...)
		return httperr.BadRequest(vErr.Message)
	case errors.Is(err, notes.ErrNoteNotFound):
		logger.L().Info("resource not found", logFields...)
		return httperr.Fail(httperr.ErrNoteNotFound)
	case errors.Is(err, notes.ErrMissingOwner):
		logger.L().Warn("missing owner reached the service", logFields...)
		return httperr.Fail(httperr.ErrUnauthorized)
	}

	logger.L().Error("service operation failed", logFields...)
	return httperr.Fail(httperr.ErrInternal)
}
