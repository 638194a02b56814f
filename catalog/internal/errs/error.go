package errs

import (
	"errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrConflict           = errors.New("conflict")
	ErrNotAvailable       = errors.New("book instance is not available")
	ErrInvalidCredentials = errors.New("Invalid credentials")

	// Renewal window violations. The messages are part of the API contract.
	ErrRenewalInPast      = errors.New("Invalid date - renewal in past")
	ErrRenewalTooFarAhead = errors.New("Invalid date - renewal more than 4 weeks ahead")
)
