package models

import (
	"errors"
)

// Error taxonomy crossing the core boundary. Callers translate these into
// protocol-specific responses (HTTP status, CLI exit code); the core never
// swallows them.
var (
	// ErrNotFound means an unknown message or category id. Not retried.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness violation, e.g. duplicate category name.
	ErrConflict = errors.New("conflict")
	// ErrValidation means invalid caller input, or structured model output
	// that still failed validation after the single retry.
	ErrValidation = errors.New("validation error")
	// ErrProvider means the embedding/generation backend is unreachable or
	// erroring; classification for the message fails entirely.
	ErrProvider = errors.New("provider error")
	// ErrDataIntegrity means a stored vector is corrupt or its dimension
	// does not match its counterpart. Signals an upstream bug.
	ErrDataIntegrity = errors.New("data integrity error")
)
