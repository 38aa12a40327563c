package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ginjaninja78/eventledger/internal/analyzer"
)

// WriteText renders b as aligned plain-text tables.
func WriteText(w io.Writer, b *analyzer.Bundle, currency string) error {
	bw := bufio.NewWriter(w)

	title := "Event ledger analysis"
	fmt.Fprintln(bw, title)
	fmt.Fprintln(bw, strings.Repeat("=", len(title)))

	tw := tabwriter.NewWriter(bw, 0, 0, 2, ' ', 0)
	for _, m := range Meta(b) {
		fmt.Fprintf(tw, "%s:\t%s\n", m.Label, m.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, t := range Tables(b) {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, t.Title)
		fmt.Fprintln(bw, strings.Repeat("-", len([]rune(t.Title))))

		if len(t.Rows) == 0 {
			fmt.Fprintln(bw, "(none)")
			continue
		}

		// Numbers are right-aligned.
		tw := tabwriter.NewWriter(bw, 0, 0, 2, ' ', tabwriter.AlignRight)
		writeTextRow(tw, titles(t.Columns))
		for _, row := range t.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = displayCell(v, t.Columns[i].Kind, currency)
			}
			writeTextRow(tw, cells)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if !b.Allocation.Apportioned {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "Note: overhead was not apportioned (no event revenue or no overhead in the selection).")
	}

	return bw.Flush()
}

func writeTextRow(w io.Writer, cells []string) {
	// A trailing tab terminates the last cell so AlignRight applies to it.
	fmt.Fprint(w, strings.Join(cells, "\t")+"\t\n")
}

func titles(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Title
	}
	return out
}
