package services

import "errors"

// Domain errors shared by services and repositories. Callers branch on these
// with errors.Is; handlers translate them to HTTP status codes. The point is
// that a bare false never travels up the stack: not-found, conflict,
// validation and insufficient-funds failures stay distinguishable.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidTransition = errors.New("invalid status transition")
)
