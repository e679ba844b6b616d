package service

import (
	"errors"
	"fmt"

	"github.com/ekisa-team/fairjudge/internal/backend"
)

// Error definitions for the service package.
var (
	ErrEmptyArticle          = errors.New("article is empty")
	ErrInvalidBackendRequest = errors.New("invalid backend request")
	ErrNoResearcher          = errors.New("no researcher configured")
)

// SwitchError reports a backend override that could not be applied.
type SwitchError struct {
	Err  error
	Kind backend.Kind
}

// Error implements error.
func (e *SwitchError) Error() string {
	return fmt.Sprintf("%v: %v", ErrInvalidBackendRequest, e.Err)
}

// Unwrap returns the switch failure.
func (e *SwitchError) Unwrap() error {
	return e.Err
}

// Is matches ErrInvalidBackendRequest.
func (e *SwitchError) Is(target error) bool {
	return target == ErrInvalidBackendRequest
}
