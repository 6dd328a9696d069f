// Package common defines shared constants and sentinel errors used across
// the access core and its transport. Callers should match them with errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	// Service-level errors.
	ErrorInternal       = errors.New("internal error")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidCredentials is the only failure Authenticate ever reports,
	// whatever the underlying cause.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Join errors.
	ErrInvalidToken  = errors.New("invalid token")
	ErrAlreadyMember = fmt.Errorf("already a member: %w", ErrConflict)
)
