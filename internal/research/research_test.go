package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_WithDefaults(t *testing.T) {
	q := Query{Topic: "energy policy"}.WithDefaults()
	assert.Equal(t, Query{Topic: "energy policy", MaxLoops: 2, InitialQueries: 3}, q)

	q = Query{Topic: "x", MaxLoops: 5, InitialQueries: 1}.WithDefaults()
	assert.Equal(t, 5, q.MaxLoops)
	assert.Equal(t, 1, q.InitialQueries)
}

func TestBundle_Summary(t *testing.T) {
	b := &Bundle{
		Topic:         "energy policy",
		FinalAnswer:   "Subsidies were cut.",
		SearchQueries: []string{"energy subsidies 2025"},
		Sources: []Source{
			{Title: "Ministry report", URL: "https://example.org/report"},
			{URL: "https://example.org/raw"},
		},
		Loops: 1,
	}

	s := b.Summary()
	assert.Contains(t, s, "Topic: energy policy")
	assert.Contains(t, s, "Research loops: 1, queries: 1, sources: 2")
	assert.Contains(t, s, "Subsidies were cut.")
	assert.Contains(t, s, "[1] Ministry report <https://example.org/report>")
	assert.Contains(t, s, "[2] https://example.org/raw <https://example.org/raw>")
}
