package models

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrDuplicateEmail is returned when the email is already held by another row, deleted rows included.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUserNotFound is returned for an unknown user id.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserDeleted is returned when the generic update path targets a soft-deleted user.
	ErrUserDeleted = errors.New("user is deleted")
	// ErrStoreUnavailable wraps failures to reach the backing store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrCacheMiss is returned by the cache when a key is absent.
	ErrCacheMiss = errors.New("cache miss")
)

// ValidationError reports malformed input, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError with a single field message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
