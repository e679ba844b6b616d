package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ekisa-team/fairjudge/internal/persona"
	"github.com/ekisa-team/fairjudge/internal/service"
)

// newTable creates a left-aligned markdown-style table.
func newTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		MaxWidth: 120,
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// renderStatus writes a status report as a two-column table.
func renderStatus(w io.Writer, r service.StatusReport) error {
	table := newTable([]string{"Field", "Value"}, w)

	rows := [][]string{
		{"current backend", currentBackend(r.CurrentBackend)},
		{"current model", orDash(r.CurrentModel)},
		{"model loaded", strconv.FormatBool(r.ModelLoaded)},
		{"available backends", orDash(strings.Join(r.AvailableBackends, ", "))},
		{"local server reachable", strconv.FormatBool(r.LocalBackendReachable)},
		{"local models", orDash(strings.Join(r.AvailableLocalModels, ", "))},
		{"suggested models", orDash(strings.Join(r.SuggestedModels, ", "))},
		{"agents", strings.Join(r.Agents, ", ")},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}

	return table.Render()
}

// renderJudge writes one row per persona followed by the request metadata.
func renderJudge(w io.Writer, res *service.JudgeResult) error {
	table := newTable([]string{"Agent", "Score", "Status", "Summary"}, w)

	for _, p := range persona.All() {
		r := res.Results[p]

		status := "ok"
		switch {
		case r.Degraded:
			status = "degraded"
		case !r.ScoreExtracted:
			status = "no score"
		}

		if err := table.Append([]string{
			string(p),
			strconv.FormatFloat(r.BiasScore, 'f', 0, 64),
			status,
			oneLine(r.Summary),
		}); err != nil {
			return err
		}
	}

	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nbackend: %s  model: %s  time: %.2fs  request: %s\n",
		res.Backend, res.Model, res.ExecutionTime.Seconds(), res.RequestID)
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// oneLine collapses whitespace so a summary fits in a table cell.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func currentBackend(name *string) string {
	if name == nil {
		return "none"
	}
	return *name
}
