package auth

import "errors"

// ErrGenAccessToken is returned when we cannot create a JWT.
var ErrGenAccessToken = errors.New("failed to generate access token")

// ErrRegistrationFailed hides whether an email is already taken.
var ErrRegistrationFailed = errors.New("registration failed")

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnauthorized is returned for a missing, malformed, forged or expired token.
var ErrUnauthorized = errors.New("invalid or expired token")

// ErrProcessPassword is returned when hashing fails.
var ErrProcessPassword = errors.New("failed to process password")

// ErrCreateUser is returned when the user store rejects a new account.
var ErrCreateUser = errors.New("failed to create user")

// ErrLoadProfile is returned when the user store fails on a profile lookup.
var ErrLoadProfile = errors.New("failed to load profile")
