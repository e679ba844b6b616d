package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
		ok   bool
	}{
		{name: "japanese suffix", text: "72点です", want: 72, ok: true},
		{name: "plain number", text: "35", want: 35, ok: true},
		{name: "first of many", text: "I would say 40, maybe 45.", want: 40, ok: true},
		{name: "hundred", text: "100%確実", want: 100, ok: true},
		{name: "zero", text: "Score: 0 (neutral)", want: 0, ok: true},
		{name: "full width digits", text: "バイアスは６５です", want: 65, ok: true},
		{name: "no numbers", text: "no numbers here", want: 50, ok: false},
		{name: "empty", text: "", want: 50, ok: false},
		{name: "out of range", text: "1000", want: 50, ok: false},
		{name: "skips out of range", text: "Out of 1000 readers, 12 agreed", want: 12, ok: true},
		{name: "embedded in word", text: "gpt4o thinks so", want: 50, ok: false},
		{name: "decimal", text: "about 7.5", want: 7, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractOK(tt.text)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, Extract(tt.text), 1e-9)
		})
	}
}
