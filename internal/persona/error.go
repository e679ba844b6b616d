package persona

import "errors"

// Error definitions for the persona package.
var (
	ErrUnknownPersona = errors.New("unknown persona")
)
