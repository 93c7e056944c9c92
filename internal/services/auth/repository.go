package auth

import (
	"context"
	"errors"
)

// ErrDuplicate is returned when trying to create a user with an email that already exists
var ErrDuplicate = errors.New("user with this email already exists")

// ErrUserNotFound is returned by lookups that match no user
var ErrUserNotFound = errors.New("user not found")

// UsersRepo defines the interface for user repository operations.
// Create assigns ID, CreatedAt and UpdatedAt.
type UsersRepo interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}
