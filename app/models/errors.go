package models

import "errors"

// Sentinel errors shared by both transports so callers can tell
// "nothing matched" apart from "something broke".
var (
	// ErrNotFound is returned by update/delete when no entity has the id
	ErrNotFound = errors.New("entity not found")

	// ErrUnauthorized is returned on a backend 401; it forces a logout
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the session role does not allow an operation
	ErrForbidden = errors.New("forbidden")

	// ErrNotAuthenticated guards gateway fetches before login completes
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInsufficientStock rejects cart lines that exceed cached stock
	ErrInsufficientStock = errors.New("insufficient stock")
)
