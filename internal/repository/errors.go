package repository

import "errors"

var (
	// Common errors
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameExists  = errors.New("username already exists")
	ErrEmailExists     = errors.New("email already exists")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)
