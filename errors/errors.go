package errors

import (
	"errors"
	"fmt"
)

// Classes. Every error returned by the core wraps exactly one of them.
var (
	ErrValidation      = fmt.Errorf("validation failed")
	ErrNotFound        = fmt.Errorf("not found")
	ErrAccessDenied    = fmt.Errorf("access denied")
	ErrStorage         = fmt.Errorf("storage failure")
	ErrUnauthenticated = fmt.Errorf("unauthenticated")
)

var (
	ErrEmptyBody          = fmt.Errorf("%w: message body is empty", ErrValidation)
	ErrMalformedID        = fmt.Errorf("%w: malformed identifier", ErrValidation)
	ErrSelfConversation   = fmt.Errorf("%w: sender and receiver are the same user", ErrValidation)
	ErrInvalidPassword    = fmt.Errorf("%w: password does not meet requirements", ErrValidation)
	ErrInvalidRole        = fmt.Errorf("%w: unknown role", ErrValidation)
	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
	ErrCaseNoteNotFound   = fmt.Errorf("%w: case note", ErrNotFound)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsUserAlreadyExists(err error) bool {
	return errors.Is(err, ErrUserAlreadyExists)
}
