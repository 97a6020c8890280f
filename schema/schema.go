// Package schema describes the shape of flat files: which record shapes (lines) a stream
// may contain, how many of each, and how every cell of a line is laid out and typed.
//
// A Schema is either fixed-width or CSV. Both kinds share the Line and Cell types; the
// fields that only apply to one kind are ignored by the other. Build a Schema once, call
// Validate, and treat it as read-only afterwards. It is then safe to share between
// goroutines.
package schema

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jf-tech/go-corelib/maths"
)

// Kind selects the layout of every line in a schema.
type Kind uint8

const (
	// FixedWidth lines are sequences of cells of fixed character widths.
	FixedWidth Kind = iota + 1
	// CSV lines are cells joined by a separator, optionally quoted.
	CSV
)

func (k Kind) String() string {
	switch k {
	case FixedWidth:
		return "fixed-width"
	case CSV:
		return "csv"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Line separators understood by the parser. Any other non-empty string is used literally.
const (
	NoSeparator = ""
	LF          = "\n"
	CRLF        = "\r\n"
)

// Infinite is the occurrence budget of a line with no upper bound.
const Infinite = maths.MaxIntValue

const (
	defaultCellSeparator = ","
	defaultPadChar       = ' '
)

var (
	// ErrInvalidSchema is wrapped by every error returned from Validate.
	ErrInvalidSchema = errors.New("schema: invalid schema")
)

// Schema is an ordered list of line definitions of one Kind.
type Schema struct {
	Kind Kind
	// LineSeparator ends every line. NoSeparator means fixed-width records follow each other
	// directly. "\n" and "\r\n" both accept either terminator when parsing.
	LineSeparator string
	// Locale is the BCP 47 tag used by cells that do not name their own.
	Locale string
	Lines  []Line
}

// NewFixedWidth returns a fixed-width schema.
func NewFixedWidth(lineSeparator string, lines ...Line) *Schema {
	return &Schema{Kind: FixedWidth, LineSeparator: lineSeparator, Lines: lines}
}

// NewCSV returns a CSV schema.
func NewCSV(lineSeparator string, lines ...Line) *Schema {
	return &Schema{Kind: CSV, LineSeparator: lineSeparator, Lines: lines}
}

// Line describes one record shape.
type Line struct {
	LineType string
	// Occurs is the occurrence budget: how many input lines this definition may consume
	// before the next definition takes over. Zero or negative means Infinite.
	Occurs int
	Cells  []Cell

	// IgnoreRead consumes matching input lines without producing records.
	IgnoreRead bool
	// IgnoreWrite skips records of this type when composing.
	IgnoreWrite bool

	// PadChar fills unused positions of fixed-width cells. Zero means space.
	PadChar rune

	// Separator joins CSV cells. Empty means ",".
	Separator string
	// Quote is the CSV quote character. Zero disables quoting.
	Quote rune
	// HeaderAsSchema makes the first input line of this type define the column set.
	HeaderAsSchema bool
}

// MaxOccurs returns the occurrence budget, Infinite when unbounded.
func (l *Line) MaxOccurs() int {
	if l.Occurs <= 0 {
		return Infinite
	}
	return l.Occurs
}

// Infinite reports whether the line has no occurrence budget.
func (l *Line) Infinite() bool {
	return l.MaxOccurs() == Infinite
}

// CellSeparator returns the separator with the default applied.
func (l *Line) CellSeparator() string {
	if l.Separator == "" {
		return defaultCellSeparator
	}
	return l.Separator
}

// FillChar returns the line pad character with the default applied.
func (l *Line) FillChar() rune {
	if l.PadChar == 0 {
		return defaultPadChar
	}
	return l.PadChar
}

// CellByName returns the first cell named name.
func (l *Line) CellByName(name string) (*Cell, bool) {
	for i := range l.Cells {
		if l.Cells[i].Name == name {
			return &l.Cells[i], true
		}
	}
	return nil, false
}

// Width returns the total width of a fixed-width line.
func (l *Line) Width() int {
	w := 0
	for i := range l.Cells {
		w += l.Cells[i].Width
	}
	return w
}

// HasConditions reports whether any cell of the line is a control cell.
func (l *Line) HasConditions() bool {
	for i := range l.Cells {
		if l.Cells[i].Condition != nil {
			return true
		}
	}
	return false
}

// LineByType returns the first line whose LineType is lineType.
func (s *Schema) LineByType(lineType string) (*Line, bool) {
	for i := range s.Lines {
		if s.Lines[i].LineType == lineType {
			return &s.Lines[i], true
		}
	}
	return nil, false
}

// MaxLineWidth returns the widest fixed-width line of the schema.
func (s *Schema) MaxLineWidth() int {
	w := 0
	for i := range s.Lines {
		w = max(w, s.Lines[i].Width())
	}
	return w
}

// Clone returns a deep copy of s. Conditions are shared since they are immutable.
func (s *Schema) Clone() *Schema {
	c := *s
	c.Lines = make([]Line, len(s.Lines))
	for i := range s.Lines {
		c.Lines[i] = s.Lines[i].Clone()
	}
	return &c
}

// Clone returns a deep copy of l.
func (l Line) Clone() Line {
	c := l
	c.Cells = make([]Cell, len(l.Cells))
	for i := range l.Cells {
		c.Cells[i] = l.Cells[i].Clone()
	}
	return c
}

// Validate checks that the schema is usable for parsing and composing.
func (s *Schema) Validate() error {
	if s.Kind != FixedWidth && s.Kind != CSV {
		return fmt.Errorf("%w: unknown schema kind %v", ErrInvalidSchema, s.Kind)
	}
	if len(s.Lines) == 0 {
		return fmt.Errorf("%w: no lines declared", ErrInvalidSchema)
	}
	for i := range s.Lines {
		if err := s.validateLine(&s.Lines[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) validateLine(l *Line) error {
	lineErr := func(format string, args ...any) error {
		return fmt.Errorf("%w: line '%s': %s", ErrInvalidSchema, l.LineType, fmt.Sprintf(format, args...))
	}
	if s.Kind == CSV && l.Quote != 0 && containsRune(l.CellSeparator(), l.Quote) {
		return lineErr("quote character %q is part of the cell separator", l.Quote)
	}
	if s.Kind == FixedWidth && s.LineSeparator == NoSeparator && l.Width() <= 0 {
		return lineErr("has no width and the schema has no line separator")
	}
	for i := range l.Cells {
		c := &l.Cells[i]
		if c.Width < 0 {
			return lineErr("cell '%s' has negative width %d", c.Name, c.Width)
		}
		if s.Kind == FixedWidth && c.Condition != nil && c.Width == 0 {
			return lineErr("control cell '%s' must have a width", c.Name)
		}
		if c.MaxLength < 0 {
			return lineErr("cell '%s' has negative max length %d", c.Name, c.MaxLength)
		}
		if c.Format.Type == ImpliedDecimal && c.Format.Pattern != "" {
			if n, err := strconv.Atoi(c.Format.Pattern); err != nil || n < 0 {
				return lineErr("cell '%s' implied decimal pattern %q is not a decimal count", c.Name, c.Format.Pattern)
			}
		}
		if c.Mandatory && c.IgnoreRead && c.Default == nil {
			return lineErr("cell '%s' is mandatory but ignored on read without default", c.Name)
		}
	}
	return nil
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}
