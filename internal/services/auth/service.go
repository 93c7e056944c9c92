package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"note-keeper/internal/config"
	"note-keeper/internal/identity"
	"note-keeper/internal/utils/crypto"
	"note-keeper/internal/utils/sanitize"

	"github.com/golang-jwt/jwt/v5"
)

// Service handles authentication business logic
type Service struct {
	repo   UsersRepo
	config config.Config
	log    *slog.Logger
	now    func() time.Time
}

// NewService creates a new auth service
func NewService(repo UsersRepo, cfg config.Config, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		config: cfg,
		log:    log,
		now:    time.Now,
	}
}

// SignUp registers a new user and returns a token for it
func (s *Service) SignUp(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	email = normalizeEmail(email)

	// password strength is checked by the 'password' validator tag

	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrRegistrationFailed
	}

	hash, err := crypto.HashPassword(password, s.config.BcryptCost)
	if err != nil {
		s.log.Error(ErrProcessPassword.Error(), "error", err)
		return nil, ErrProcessPassword
	}

	user, err := s.repo.Create(ctx, &User{
		Name:         sanitize.Clean(name),
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrRegistrationFailed
		}
		s.log.Error(ErrCreateUser.Error(), "error", err)
		return nil, ErrCreateUser
	}

	token, err := s.IssueToken(user)
	if err != nil {
		s.log.Error(ErrGenAccessToken.Error(), "error", err, "user_id", user.ID)
		return nil, ErrGenAccessToken
	}

	return &AuthResponse{User: user, Token: token}, nil
}

// SignIn authenticates a user by email and password
func (s *Service) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = normalizeEmail(email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.log.Error("failed to find user by email", "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	if err := crypto.CheckPassword(password, user.PasswordHash); err != nil {
		s.log.Info("password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		s.log.Error(ErrGenAccessToken.Error(), "error", err, "user_id", user.ID)
		return nil, ErrGenAccessToken
	}

	return &AuthResponse{User: user, Token: token}, nil
}

// Profile loads the account behind a verified identity
func (s *Service) Profile(ctx context.Context, owner identity.Owner) (*User, error) {
	if owner.IsZero() {
		return nil, ErrUnauthorized
	}

	user, err := s.repo.FindByID(ctx, owner.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.log.Error(ErrLoadProfile.Error(), "error", err, "user_id", owner.ID)
		return nil, ErrLoadProfile
	}
	return user, nil
}

// IssueToken signs an HS256 access token for user
func (s *Service) IssueToken(user *User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"iat":     now.Unix(),
		"exp":     now.Add(time.Duration(s.config.JWTExpiryMinutes) * time.Minute).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// Authenticate verifies a raw bearer token and returns the identity it
// carries. Every failure is ErrUnauthorized.
func (s *Service) Authenticate(raw string) (identity.Owner, error) {
	if raw == "" {
		return identity.Owner{}, ErrUnauthorized
	}

	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return identity.Owner{}, ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity.Owner{}, ErrUnauthorized
	}
	return OwnerFromClaims(claims)
}

// OwnerFromClaims turns verified token claims into an identity. It is the
// only place claims become an Owner.
func OwnerFromClaims(claims jwt.MapClaims) (identity.Owner, error) {
	id, _ := claims["user_id"].(string)
	if id == "" {
		return identity.Owner{}, fmt.Errorf("%w: no user_id claim", ErrUnauthorized)
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	return identity.Owner{ID: id, Email: email, Name: name}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
