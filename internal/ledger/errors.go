package ledger

import "fmt"

// SchemaError reports a required column missing from the ledger header.
// It is fatal: no ledger is produced.
type SchemaError struct {
	// Column is the first required column that was not found.
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column: %s", e.Column)
}

// ParseError reports a malformed file. Message carries the underlying
// reader message verbatim so it can be surfaced as is.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string { return e.Message }

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(err error) *ParseError {
	return &ParseError{Message: err.Error(), Err: err}
}
