package env

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ekisa-team/fairjudge/internal/envvar"
)

func TestParse(t *testing.T) {
	tests := map[string]Environment{
		"production":  Production,
		"prod":        Production,
		" PROD ":      Production,
		"development": Development,
		"staging":     Development,
		"":            Development,
	}

	for in, want := range tests {
		assert.Equal(t, want, Parse(in), "input %q", in)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(envvar.FairjudgeEnv, "production")
	assert.True(t, FromEnv().IsProduction())

	t.Setenv(envvar.FairjudgeEnv, "")
	assert.False(t, FromEnv().IsProduction())
}
