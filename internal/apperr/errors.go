package apperr

import (
	"errors"
	"fmt"
)

// Error kinds. Services wrap one of these with %w so callers can classify a
// failure with errors.Is without knowing the concrete message.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrPrecondition = errors.New("precondition failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Named preconditions: a prior step must be completed by the user first.
var (
	ErrIncompleteProfile  = fmt.Errorf("%w: please complete your profile first (birth_date, gender, height, weight)", ErrPrecondition)
	ErrMissingPreferences = fmt.Errorf("%w: please set your activity level and goal first", ErrPrecondition)
	ErrTargetsNotSet      = fmt.Errorf("%w: please set your macro targets first", ErrPrecondition)
)

// Validation returns a client-fault error describing invalid input.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an error for an absent entity, e.g. NotFound("food").
func NotFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// Conflict returns an error for a uniqueness violation.
func Conflict(what string) error {
	return fmt.Errorf("%w: %s", ErrConflict, what)
}

// Unauthorized returns an error for failed authentication.
func Unauthorized(what string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, what)
}

// Message strips the kind prefix so only the user-facing part is returned.
func Message(err error) string {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrPrecondition, ErrConflict, ErrUnauthorized} {
		if errors.Is(err, kind) {
			msg := err.Error()
			prefix := kind.Error() + ": "
			if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
				return msg[len(prefix):]
			}
			return msg
		}
	}
	return err.Error()
}
