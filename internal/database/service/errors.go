package service

import "errors"

// Service errors. Each maps to one caller-visible category:
// Validation, Conflict, Unauthenticated, Forbidden or Not-Found.
var (
	// Validation
	ErrValidation = errors.New("invalid input")

	// Conflict
	ErrEmailAlreadyExists   = errors.New("email already registered")
	ErrTickerAlreadyWatched = errors.New("stock already in watchlist")

	// Unauthenticated. ErrInvalidCredentials covers both an unknown email and
	// a wrong password.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUnauthenticated    = errors.New("could not validate credentials")

	// Forbidden
	ErrInactiveUser = errors.New("inactive user")

	// Not-Found
	ErrTickerNotWatched = errors.New("stock not found in watchlist")
	ErrUserNotFound     = errors.New("user not found")
)
