package swiftflat

import (
	"errors"
	"fmt"

	"github.com/oleg578/swiftflat/textfmt"
)

var (
	// ErrStreamCapacity is returned when one line needs more buffered characters than the
	// reader capacity. It always ends parsing.
	ErrStreamCapacity = errors.New("swiftflat: line exceeds buffer capacity")
	// ErrFormatSyntax is reported when cell text does not parse as the declared type.
	ErrFormatSyntax = textfmt.ErrSyntax
	// ErrQuoteSyntax is reported for malformed CSV quoting.
	ErrQuoteSyntax = errors.New("swiftflat: quote syntax error")
	// ErrQuoteOpen is reported when a quote appears after the first character of a field.
	ErrQuoteOpen = fmt.Errorf("%w: quote must open at field start", ErrQuoteSyntax)
	// ErrQuoteMissingEnd is reported when a quoted field is not closed before the end of the line.
	ErrQuoteMissingEnd = fmt.Errorf("%w: missing end quote", ErrQuoteSyntax)
	// ErrQuoteClose is reported when a closing quote is not followed by a separator or the end of the line.
	ErrQuoteClose = fmt.Errorf("%w: quote must close at field end", ErrQuoteSyntax)
	// ErrMandatoryMissing is reported when a mandatory cell is blank or absent.
	ErrMandatoryMissing = errors.New("swiftflat: mandatory cell missing")
	// ErrLineShape is reported when a line has more or fewer cells than its definition.
	ErrLineShape = errors.New("swiftflat: line shape does not match definition")
	// ErrInsufficientLine is reported when a line ends before all of its cells were read.
	ErrInsufficientLine = fmt.Errorf("%w: insufficient cells", ErrLineShape)
	// ErrLineOverflow is reported when a CSV line has more fields than its definition.
	ErrLineOverflow = fmt.Errorf("%w: additional cells", ErrLineShape)
	// ErrMaxLength is reported when cell text is longer than its maximum length. The text is
	// truncated and the cell is kept.
	ErrMaxLength = errors.New("swiftflat: cell exceeds max length")
	// ErrNoMatchingLine is reported when no line definition applies to an input line.
	ErrNoMatchingLine = errors.New("swiftflat: no line type matches")
	// ErrUnknownLineType is returned when composing a record whose line type the schema does not declare.
	ErrUnknownLineType = errors.New("swiftflat: unknown line type")
)

// LineError locates an error on an input line.
type LineError struct {
	Line     int64
	LineType string
	Err      error
}

// Error formats the error message with the stored Line, LineType and Err values.
func (e *LineError) Error() string {
	if e == nil {
		return ""
	}
	if e.LineType == "" {
		return fmt.Sprintf("swiftflat: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("swiftflat: line %d (%s): %v", e.Line, e.LineType, e.Err)
}

// Unwrap returns the underlying Err so LineError participates in errors.Unwrap.
func (e *LineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CellError locates an error on one cell of an input line or of a composed record.
type CellError struct {
	Line     int64
	LineType string
	Cell     string
	// Value is the cell text that caused the error, if any.
	Value string
	Err   error
}

// Error formats the error message with the stored location, Value and Err.
func (e *CellError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("swiftflat: line %d (%s) cell '%s' value %q: %v", e.Line, e.LineType, e.Cell, e.Value, e.Err)
}

// Unwrap returns the underlying Err so CellError participates in errors.Unwrap.
func (e *CellError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
