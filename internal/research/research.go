// Package research defines the boundary to the web research collaborator.
// Research orchestration itself lives outside fairjudge.
package research

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Default query limits.
const (
	DefaultMaxLoops       = 2
	DefaultInitialQueries = 3
)

// Query describes a research request.
type Query struct {
	Topic          string `json:"topic" minLength:"1"`
	MaxLoops       int    `json:"max_loops,omitempty" minimum:"0" maximum:"10"`
	InitialQueries int    `json:"initial_queries,omitempty" minimum:"0" maximum:"10"`
}

// WithDefaults returns q with zero limits replaced by the defaults.
func (q Query) WithDefaults() Query {
	if q.MaxLoops == 0 {
		q.MaxLoops = DefaultMaxLoops
	}
	if q.InitialQueries == 0 {
		q.InitialQueries = DefaultInitialQueries
	}
	return q
}

// Source is a web page the research drew from.
type Source struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// Bundle is the outcome of a research run.
type Bundle struct {
	Timestamp     time.Time `json:"timestamp"`
	Topic         string    `json:"topic"`
	FinalAnswer   string    `json:"final_answer"`
	Sources       []Source  `json:"sources"`
	SearchQueries []string  `json:"search_queries"`
	Summaries     []string  `json:"research_summaries"`
	Loops         int       `json:"research_loops"`
}

// Summary renders a short human-readable digest of the bundle.
func (b *Bundle) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Topic: %s\n", b.Topic)
	fmt.Fprintf(&sb, "Research loops: %d, queries: %d, sources: %d\n", b.Loops, len(b.SearchQueries), len(b.Sources))

	if b.FinalAnswer != "" {
		sb.WriteString("\n")
		sb.WriteString(b.FinalAnswer)
		sb.WriteString("\n")
	}

	for i, s := range b.Sources {
		title := s.Title
		if title == "" {
			title = s.URL
		}
		fmt.Fprintf(&sb, "[%d] %s <%s>\n", i+1, title, s.URL)
	}

	return sb.String()
}

// Researcher gathers web research for a topic.
type Researcher interface {
	Research(ctx context.Context, q Query) (*Bundle, error)
}
