package application

import (
	"errors"
	"fmt"

	"github.com/brendan-liang/softdev-sat/internal/persistence"
)

var (
	// ErrNotFound is the base sentinel for any absent record.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is the base sentinel for duplicate-key conflicts.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned when a sign-in digest does not match.
	ErrInvalidCredentials = errors.New("application: invalid credentials")

	// Entity-specific variants. Each matches its base sentinel via errors.Is
	// so transport code can branch on either granularity.
	ErrUserNotFound  = fmt.Errorf("user: %w", ErrNotFound)
	ErrGroupNotFound = fmt.Errorf("group: %w", ErrNotFound)
	ErrEventNotFound = fmt.Errorf("event: %w", ErrNotFound)

	ErrUserAlreadyExists  = fmt.Errorf("user: %w", ErrAlreadyExists)
	ErrGroupAlreadyExists = fmt.Errorf("group: %w", ErrAlreadyExists)
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// isMissing reports whether err is the storage layer's not-found sentinel.
func isMissing(err error) bool {
	return errors.Is(err, persistence.ErrNotFound)
}
