// =============================================================================
// Event Ledger - Record Parser
// =============================================================================
//
// This module turns a raw ledger export into typed transactions. It handles:
//   - Unknown delimiters (semicolon, comma, tab, pipe) via sniffing
//   - Legacy encodings (ISO-8859-1, Windows-1252) and UTF-8 BOMs
//   - Header normalization (whitespace, Unicode composition)
//   - Required column checks
//   - Day-first dates and locale amounts
//   - XLSX workbooks exported instead of CSV (see xlsx.go)
//
// LOAD CONTRACT:
//   - A missing required column fails with *SchemaError.
//   - A malformed file fails with *ParseError.
//   - A row whose date or amount cannot be parsed is dropped and counted.
//   - Loads are atomic: on error no ledger is returned.
//
// =============================================================================

package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/eventledger/internal/config"
	"github.com/ginjaninja78/eventledger/internal/types"
)

// =============================================================================
// LEDGER STRUCTURE
// =============================================================================

// Ledger is a parsed, cleaned ledger. It is immutable once returned.
type Ledger struct {
	// Source is the file name or label the ledger was loaded from.
	Source string

	// Hash is the hex SHA-256 of the raw content.
	Hash string

	// Delimiter is the field separator that was used; zero for workbooks.
	Delimiter rune

	// Headers are the normalized column headers.
	Headers []string

	// Transactions are the rows that survived cleaning, in file order.
	Transactions []types.Transaction

	// RowsRead is the number of non-empty data rows in the file.
	RowsRead int

	// Dropped counts rows excluded during cleaning.
	Dropped DropStats
}

// DropStats counts rows excluded because a value could not be parsed.
type DropStats struct {
	InvalidDate   int
	InvalidAmount int
}

// Total returns the number of dropped rows.
func (d DropStats) Total() int { return d.InvalidDate + d.InvalidAmount }

// Options controls how a ledger is read.
type Options struct {
	Source         string
	Settings       config.CSVSettings
	Columns        config.Columns
	CurrencyMarker string
}

// OptionsFromConfig builds parse options from the application configuration.
func OptionsFromConfig(cfg *config.Config, source string) Options {
	return Options{
		Source:         source,
		Settings:       cfg.CSVSettings,
		Columns:        cfg.Columns,
		CurrencyMarker: cfg.CurrencyMarker,
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Load reads a ledger file from disk and parses it.
func Load(path string, opts Options) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	if opts.Source == "" {
		opts.Source = path
	}
	return Parse(data, opts)
}

// Parse parses raw ledger content.
//
// PARSING PROCESS:
//   1. Decode the content to UTF-8
//   2. Detect the delimiter (unless configured)
//   3. Read all records
//   4. Normalize headers and check required columns
//   5. Convert each row, dropping rows with a bad date, then bad amount
//
// XLSX workbooks are recognized by their signature and read from the first
// worksheet instead; encoding and delimiter settings do not apply to them.
func Parse(data []byte, opts Options) (*Ledger, error) {
	if isXLSX(data) {
		return parseXLSX(data, opts)
	}

	text, err := decode(data, opts.Settings.Encoding)
	if err != nil {
		return nil, newParseError(err)
	}
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, &ParseError{Message: "ledger file is empty"}
	}

	delim, err := resolveDelimiter(text, opts.Settings.Delimiter)
	if err != nil {
		return nil, newParseError(err)
	}

	reader := csv.NewReader(bytes.NewReader(text))
	configureReader(reader, delim)

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, newParseError(err)
	}

	return build(data, allRows, delim, opts, nil)
}

// build turns raw records (header first) into a ledger. cellDate, when set,
// pre-converts date cells, e.g. spreadsheet serial numbers.
func build(data []byte, allRows [][]string, delim rune, opts Options, cellDate func(string) string) (*Ledger, error) {
	if len(allRows) == 0 {
		return nil, &ParseError{Message: "ledger file is empty"}
	}

	headers := cleanHeaders(allRows[0])
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	for _, col := range opts.Columns.Required() {
		if _, ok := index[normalizeHeader(col)]; !ok {
			return nil, &SchemaError{Column: col}
		}
	}

	l := &Ledger{
		Source:       opts.Source,
		Hash:         contentHash(data),
		Delimiter:    delim,
		Headers:      headers,
		Transactions: make([]types.Transaction, 0, len(allRows)-1),
	}

	cols := opts.Columns
	for rowIndex := 1; rowIndex < len(allRows); rowIndex++ {
		row := allRows[rowIndex]
		if isRowEmpty(row) {
			continue
		}
		l.RowsRead++

		get := func(col string) string {
			i := index[normalizeHeader(col)]
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		rawDate := get(cols.Date)
		if cellDate != nil {
			rawDate = cellDate(rawDate)
		}
		date, ok := ParseDate(rawDate)
		if !ok {
			l.Dropped.InvalidDate++
			continue
		}
		amount, ok := ParseAmount(get(cols.Amount), opts.CurrencyMarker)
		if !ok {
			l.Dropped.InvalidAmount++
			continue
		}

		l.Transactions = append(l.Transactions, types.Transaction{
			ID:             get(cols.ID),
			Date:           date,
			Description:    get(cols.Description),
			Counterparty:   get(cols.Counterparty),
			Classification: get(cols.Classification),
			Amount:         amount,
			Status:         get(cols.Status),
			Kind:           strings.ToUpper(get(cols.Kind)),
			Row:            rowIndex + 1,
		})
	}

	return l, nil
}

// decode converts the content to UTF-8 and strips a UTF-8 byte order mark.
func decode(data []byte, enc string) ([]byte, error) {
	var decoder *encoding.Decoder

	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(enc), "_", "-")) {
	case "", "UTF-8", "UTF8":
		return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		decoder = charmap.ISO8859_1.NewDecoder()
	case "WINDOWS-1252", "CP1252":
		decoder = charmap.Windows1252.NewDecoder()
	default:
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}

	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s content: %w", enc, err)
	}
	return out, nil
}

// CheckSettings reports whether the delimiter and encoding settings are
// usable, without reading any content.
func CheckSettings(s config.CSVSettings) error {
	if _, err := decode(nil, s.Encoding); err != nil {
		return err
	}
	if _, err := resolveDelimiter(nil, s.Delimiter); err != nil {
		return err
	}
	return nil
}

// configureReader configures the CSV reader for ledger exports.
func configureReader(reader *csv.Reader, delim rune) {
	reader.Comma = delim

	// Allow variable number of fields per row; short rows read as blanks.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// =============================================================================
// DELIMITER DETECTION
// =============================================================================

// delimiterCandidates are tried in order; earlier ones win ties.
var delimiterCandidates = []rune{';', ',', '\t', '|'}

// sniffLines is how many lines are sampled for detection.
const sniffLines = 20

// resolveDelimiter returns the configured delimiter, or sniffs one when the
// setting is "auto".
func resolveDelimiter(text []byte, setting string) (rune, error) {
	switch strings.TrimSpace(setting) {
	case "", "auto", "AUTO":
		return sniffDelimiter(text), nil
	case "\\t", "\t", "tab", "TAB":
		return '\t', nil
	case "|", "pipe", "PIPE":
		return '|', nil
	case ";", "semicolon":
		return ';', nil
	case ",", "comma":
		return ',', nil
	}
	r := []rune(setting)
	if len(r) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q", setting)
	}
	return r[0], nil
}

// sniffDelimiter picks the candidate that splits the sampled lines into the
// widest consistent record shape. A candidate that yields a single column
// in the header never wins.
func sniffDelimiter(text []byte) rune {
	lines := strings.SplitN(string(text), "\n", sniffLines+1)
	if len(lines) > sniffLines {
		lines = lines[:sniffLines]
	}
	sample := strings.Join(lines, "\n")

	best := ','
	bestWidth := 0
	bestConsistent := false

	for _, cand := range delimiterCandidates {
		width, consistent := measure(sample, cand)
		if width < 2 {
			continue
		}
		better := false
		switch {
		case consistent && !bestConsistent:
			better = true
		case consistent == bestConsistent && width > bestWidth:
			better = true
		}
		if better {
			best, bestWidth, bestConsistent = cand, width, consistent
		}
	}
	return best
}

// measure returns the header width for delim and whether every sampled
// non-empty record has that same width.
func measure(sample string, delim rune) (int, bool) {
	r := csv.NewReader(strings.NewReader(sample))
	configureReader(r, delim)

	width := -1
	consistent := true
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return width, false
		}
		if isRowEmpty(rec) {
			continue
		}
		if width < 0 {
			width = len(rec)
			continue
		}
		if len(rec) != width {
			consistent = false
		}
	}
	return width, consistent
}

// =============================================================================
// HEADERS AND ROWS
// =============================================================================

// normalizeHeader trims whitespace and composes accents (NFC) so that
// "Classificação" matches whether the export used precomposed or combining
// characters. Names stay case-sensitive.
func normalizeHeader(h string) string {
	return norm.NFC.String(strings.TrimSpace(h))
}

// cleanHeaders normalizes header values. Empty headers get a positional
// placeholder so they never collide with a required name.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = normalizeHeader(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// LEDGER QUERIES
// =============================================================================

// Statuses returns the distinct statuses present in the ledger, sorted.
func (l *Ledger) Statuses() []string {
	seen := make(map[string]bool)
	var out []string
	for _, tx := range l.Transactions {
		if !seen[tx.Status] {
			seen[tx.Status] = true
			out = append(out, tx.Status)
		}
	}
	sort.Strings(out)
	return out
}

// Bounds returns the earliest and latest transaction dates.
// ok is false for an empty ledger.
func (l *Ledger) Bounds() (from, to civil.Date, ok bool) {
	for i, tx := range l.Transactions {
		if i == 0 || tx.Date.Before(from) {
			from = tx.Date
		}
		if i == 0 || tx.Date.After(to) {
			to = tx.Date
		}
	}
	return from, to, len(l.Transactions) > 0
}
