package backend

import (
	"errors"
	"fmt"
	"strings"
)

// Error definitions for the backend package.
var (
	ErrNotFound           = errors.New("backend not found in registry")
	ErrAlreadyRegistered  = errors.New("backend is already registered in the registry")
	ErrInvalidBackend     = errors.New("invalid backend")
	ErrBackendUnavailable = errors.New("backend is not available")
	ErrModelNotFound      = errors.New("model not found")
	ErrNoBackendAvailable = errors.New("no backend available")
	ErrBackendBusy        = errors.New("backend switch in progress")
	ErrModelNotLoaded     = errors.New("model is not loaded")
)

// ModelNotFoundError reports a missing model along with the models that are installed.
type ModelNotFoundError struct {
	Kind      Kind
	Model     string
	Installed []string
}

// Error implements error.
func (e *ModelNotFoundError) Error() string {
	if len(e.Installed) == 0 {
		return fmt.Sprintf("%s model %q not found; no models installed", e.Kind, e.Model)
	}
	return fmt.Sprintf("%s model %q not found; installed: %s", e.Kind, e.Model, strings.Join(e.Installed, ", "))
}

// Is matches ErrModelNotFound.
func (e *ModelNotFoundError) Is(target error) bool {
	return target == ErrModelNotFound
}
