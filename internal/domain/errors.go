package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation                  = errors.New("validation failed")
	ErrNotFound                    = errors.New("not found")
	ErrForbidden                   = errors.New("forbidden")
	ErrInvalidStateTransition      = errors.New("invalid state transition")
	ErrInsufficientBalance         = errors.New("insufficient balance")
	ErrSignatureVerificationFailed = errors.New("signature verification failed")
	ErrConcurrencyConflict         = errors.New("concurrency conflict")
	ErrUpstreamGateway             = errors.New("payment gateway unavailable")
	ErrAlreadyExists               = errors.New("already exists")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// StateError reports a rejected transition together with the state the
// entity was found in.
type StateError struct {
	Entity  string
	Current string
	Target  string
}

func (e *StateError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("invalid state transition: %s is %s", e.Entity, e.Current)
	}
	return fmt.Sprintf("invalid state transition: %s is %s, cannot move to %s", e.Entity, e.Current, e.Target)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidStateTransition
}
