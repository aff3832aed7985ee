package domain

import "errors"

// Error kinds. Every error returned by the services unwraps to exactly one of
// these so the transport can map it with errors.Is.
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrConflict        = errors.New("conflict")
)

// Error carries a user facing message for one of the kinds above.
type Error struct {
	Kind    error
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NewValidationError(field, message string) error {
	return &Error{Kind: ErrValidation, Field: field, Message: message}
}

func NewNotFoundError(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func NewUnauthorizedError(message string) error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

func NewUnauthenticatedError(message string) error {
	return &Error{Kind: ErrUnauthenticated, Message: message}
}

func NewConflictError(field, message string) error {
	return &Error{Kind: ErrConflict, Field: field, Message: message}
}

// AsError extracts the *Error from err's chain, if any.
func AsError(err error) (*Error, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr, true
	}

	return nil, false
}
