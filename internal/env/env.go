// Package env identifies the runtime environment.
package env

import (
	"os"
	"strings"

	"github.com/ekisa-team/fairjudge/internal/envvar"
)

// Environment is the runtime environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// FromEnv reads the environment from FAIRJUDGE_ENV. Anything other than
// "production" or "prod" is treated as development.
func FromEnv() Environment {
	return Parse(os.Getenv(envvar.FairjudgeEnv))
}

// Parse parses an environment name.
func Parse(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// IsProduction reports whether e is Production.
func (e Environment) IsProduction() bool {
	return e == Production
}
