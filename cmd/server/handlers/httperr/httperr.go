package httperr

import (
	"errors"

	"note-keeper/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// E represents an HTTP error with status code and message
type E struct {
	Status  int    `json:"-" example:"400"`
	Message string `json:"error" example:"Title and content are required"`
}

// Error implements the error interface
func (e E) Error() string {
	return e.Message
}

// JSON returns the error as JSON response
func (e E) JSON(c *fiber.Ctx) error {
	return c.Status(e.Status).JSON(e)
}

// Fail returns the error for Fiber's global error handler to process
func Fail(err E) error {
	return err
}

// InvalidInput wraps a validation error and returns the standard response.
func InvalidInput(err error) error {
	return Fail(E{
		Status:  fiber.StatusBadRequest,
		Message: "Invalid input: " + err.Error(),
	})
}

// BadRequest returns a 400 carrying message verbatim
func BadRequest(message string) error {
	return Fail(E{Status: fiber.StatusBadRequest, Message: message})
}

// Pre-defined HTTP errors
var (
	ErrBadRequest         = E{Status: fiber.StatusBadRequest, Message: "Bad Request"}
	ErrUnauthorized       = E{Status: fiber.StatusUnauthorized, Message: "Unauthorized"}
	ErrInvalidCredentials = E{Status: fiber.StatusUnauthorized, Message: "Invalid credentials"}
	ErrNoteNotFound       = E{Status: fiber.StatusNotFound, Message: "Note not found"}
	ErrUserNotFound       = E{Status: fiber.StatusNotFound, Message: "User not found"}
	ErrTooManyRequests    = E{Status: fiber.StatusTooManyRequests, Message: "Too Many Requests"}
	ErrInternal           = E{Status: fiber.StatusInternalServerError, Message: "Internal server error"}
)

// Handler is the global error handler for Fiber. Errors that are neither E
// nor *fiber.Error never reach the client; they are logged and answered
// with ErrInternal.
func Handler(c *fiber.Ctx, err error) error {
	var e E
	if errors.As(err, &e) {
		return e.JSON(c)
	}

	var fiberError *fiber.Error
	if errors.As(err, &fiberError) {
		return c.Status(fiberError.Code).JSON(E{
			Status:  fiberError.Code,
			Message: fiberError.Message,
		})
	}

	logger.L().Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
	return ErrInternal.JSON(c)
}
