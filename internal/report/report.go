// =============================================================================
// Event Ledger - Report Writers
// =============================================================================
//
// This module renders an analysis bundle for people and for other programs.
//
// FORMATS:
//   - text:     aligned plain-text tables, amounts in the configured currency
//   - markdown: the same tables as GitHub-flavored markdown; rendered for
//               the terminal with glamour when printed to stdout
//   - json:     run metadata plus one array of row objects per table
//   - xml:      run metadata plus one <table> element per table
//   - xlsx:     one worksheet per table (excelize)
//
// =============================================================================

package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/eventledger/internal/analyzer"
)

// Format is a report output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatXML      Format = "xml"
	FormatXLSX     Format = "xlsx"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatMarkdown, FormatJSON, FormatXML, FormatXLSX}

// ParseFormat converts a user-supplied name to a Format. Matching is
// case-insensitive and accepts "md" and "txt" as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported report format %q (expected one of text, markdown, json, xml, xlsx)", s)
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return "txt"
	case FormatMarkdown:
		return "md"
	default:
		return string(f)
	}
}

// Write renders b to w in format f. currency is the ISO 4217 code used by
// the human-readable formats.
func Write(w io.Writer, b *analyzer.Bundle, f Format, currency string) error {
	switch f {
	case FormatText:
		return WriteText(w, b, currency)
	case FormatMarkdown:
		return WriteMarkdown(w, b, currency)
	case FormatJSON:
		return WriteJSON(w, b)
	case FormatXML:
		return WriteXML(w, b)
	case FormatXLSX:
		return writeXLSXTo(w, b)
	}
	return fmt.Errorf("unsupported report format %q", f)
}

// WriteFile renders b to path, creating parent directories as needed.
func WriteFile(path string, b *analyzer.Bundle, f Format, currency string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if f == FormatXLSX {
		return WriteXLSX(path, b)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := Write(file, b, f, currency); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
