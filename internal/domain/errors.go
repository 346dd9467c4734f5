package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the custody service matches
// exactly one of these through errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("resource not found")
	ErrConflict    = errors.New("conflict")
	ErrForbidden   = errors.New("forbidden")
	ErrPersistence = errors.New("persistence failure")
)

var (
	ErrUnauthorized = errors.New("unauthorized")

	ErrDocumentNotFound = fmt.Errorf("%w: document not found", ErrNotFound)
	ErrDocumentInactive = fmt.Errorf("%w: document is inactive", ErrNotFound)
	ErrNoActiveCustody  = fmt.Errorf("%w: document is not checked out", ErrNotFound)
	ErrClientNotFound   = fmt.Errorf("%w: client not found", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("%w: user not found", ErrNotFound)

	ErrAlreadyCheckedOut     = fmt.Errorf("%w: already checked out", ErrConflict)
	ErrHolderMismatch        = fmt.Errorf("%w: current holder does not match", ErrConflict)
	ErrSelfCheckinNotAllowed = fmt.Errorf("%w: only a user holder can check a copy back in", ErrConflict)

	ErrNotAdmin = fmt.Errorf("%w: administrator role required", ErrForbidden)
)

// Validationf builds a ValidationError carrying a field-level message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsDomainError reports whether err already belongs to one of the error categories.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrPersistence)
}
