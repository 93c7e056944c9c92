package auth

import (
	"context"
	"errors"

	"note-keeper/cmd/server/handlers/handlerutil"
	"note-keeper/cmd/server/handlers/httperr"
	"note-keeper/internal/identity"
	"note-keeper/internal/logger"
	"note-keeper/internal/services/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthService defines the interface for auth service
type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (*auth.AuthResponse, error)
	SignIn(ctx context.Context, email, password string) (*auth.AuthResponse, error)
	Profile(ctx context.Context, owner identity.Owner) (*auth.User, error)
}

// Handlers contains the auth HTTP handlers
type Handlers struct {
	authService AuthService
	validator   *validator.Validate
}

// NewHandlers creates new auth handlers
func NewHandlers(authService AuthService, validator *validator.Validate) *Handlers {
	return &Handlers{
		authService: authService,
		validator:   validator,
	}
}

// SignUp handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.SignUpRequest true "Sign up request"
// @Success 201 {object} auth.AuthResponse
// @Failure 400 {object} httperr.E
// @Failure 500 {object} httperr.E
// @Router /api/auth/signup [post]
func (h *Handlers) SignUp(c *fiber.Ctx) error {
	var req auth.SignUpRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "SignUp"); err != nil {
		return err
	}

	resp, err := h.authService.SignUp(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrRegistrationFailed) {
			logger.L().Info("signup rejected", "handler", "SignUp", "error", err)
			return httperr.BadRequest("Registration failed")
		}
		logger.L().Error("signup service failed", "handler", "SignUp", "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	resp.Message = "User created successfully"
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles user authentication
// @Summary Authenticate a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.SignInRequest true "Login request"
// @Success 200 {object} auth.AuthResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 429 {object} httperr.E
// @Router /api/auth/login [post]
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req auth.SignInRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Login"); err != nil {
		return err
	}

	resp, err := h.authService.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.L().Info("login rejected", "handler", "Login", "remote", c.IP())
			return httperr.Fail(httperr.ErrInvalidCredentials)
		}
		logger.L().Error("login service failed", "handler", "Login", "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	resp.Message = "Login successful"
	return c.JSON(resp)
}

// Profile returns the account of the caller
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} auth.ProfileResponse
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /api/auth/profile [get]
func (h *Handlers) Profile(c *fiber.Ctx) error {
	owner, err := handlerutil.GetOwner(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Profile(c.UserContext(), owner)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			return httperr.Fail(httperr.ErrUserNotFound)
		case errors.Is(err, auth.ErrUnauthorized):
			return httperr.Fail(httperr.ErrUnauthorized)
		}
		logger.L().Error("profile service failed", "handler", "Profile", "user_id", owner.ID, "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(auth.ProfileResponse{User: user})
}
