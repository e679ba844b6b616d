package persona

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	assert.Equal(t, []Persona{Liberal, Conservative, Neutral}, All())
	assert.Equal(t, []string{"liberal", "conservative", "neutral"}, Names())
}

func TestParse(t *testing.T) {
	for _, name := range Names() {
		p, err := Parse(name)
		require.NoError(t, err)
		assert.Equal(t, name, string(p))
	}

	_, err := Parse("libertarian")
	assert.ErrorIs(t, err, ErrUnknownPersona)
}

func TestCompose(t *testing.T) {
	article := "The city council approved the new budget."

	got, err := Compose(Liberal, article)
	require.NoError(t, err)

	parts := strings.Split(got, "\n\n")
	require.Len(t, parts, 3)
	assert.Equal(t, systemFraming, parts[0])
	assert.Equal(t, instructions[Liberal], parts[1])
	assert.Equal(t, article, parts[2])

	again, err := Compose(Liberal, article)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	other, err := Compose(Conservative, article)
	require.NoError(t, err)
	assert.NotEqual(t, got, other)

	_, err = Compose(Persona("anarchist"), article)
	assert.ErrorIs(t, err, ErrUnknownPersona)
}

func TestScorePrompt(t *testing.T) {
	composed, err := Compose(Neutral, "article")
	require.NoError(t, err)

	got, err := ScorePrompt(Neutral, composed)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, composed))
	assert.Contains(t, got, "0 to 100")

	_, err = ScorePrompt(Persona(""), composed)
	assert.ErrorIs(t, err, ErrUnknownPersona)
}
