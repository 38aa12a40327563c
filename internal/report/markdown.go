package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/ginjaninja78/eventledger/internal/analyzer"
)

// WriteMarkdown renders b as GitHub-flavored markdown.
func WriteMarkdown(w io.Writer, b *analyzer.Bundle, currency string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# Event ledger analysis: %s\n\n", escapeMarkdown(b.Source))
	for _, m := range Meta(b) {
		fmt.Fprintf(bw, "- **%s**: %s\n", m.Label, escapeMarkdown(m.Value))
	}

	for _, t := range Tables(b) {
		fmt.Fprintf(bw, "\n## %s\n\n", escapeMarkdown(t.Title))
		if len(t.Rows) == 0 {
			fmt.Fprintln(bw, "_None._")
			continue
		}

		header := titles(t.Columns)
		align := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			align[i] = "---"
			if c.Kind == KindMoney || c.Kind == KindPercent || c.Kind == KindInt {
				align[i] = "---:"
			}
		}
		writeMarkdownRow(bw, header)
		writeMarkdownRow(bw, align)
		for _, row := range t.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = escapeMarkdown(displayCell(v, t.Columns[i].Kind, currency))
			}
			writeMarkdownRow(bw, cells)
		}
	}

	if !b.Allocation.Apportioned {
		fmt.Fprintln(bw, "\n> Overhead was not apportioned: no event revenue or no overhead in the selection.")
	}

	return bw.Flush()
}

func writeMarkdownRow(w io.Writer, cells []string) {
	fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
}

// escapeMarkdown keeps cell text from breaking the table layout.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

// Render renders markdown for a terminal. style is a glamour standard style
// ("auto", "dark", "light", "notty", ...); width 0 disables wrapping.
func Render(markdown, style string, width int) (string, error) {
	if style == "" {
		style = "auto"
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if style == "auto" {
		opts = []glamour.TermRendererOption{glamour.WithAutoStyle()}
	}
	opts = append(opts, glamour.WithWordWrap(width))

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
