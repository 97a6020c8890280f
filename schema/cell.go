package schema

import (
	"strconv"

	"github.com/jf-tech/go-corelib/strs"
)

// CellType is the declared type of a cell value.
type CellType uint8

const (
	Text CellType = iota
	Integer
	Float
	Decimal
	// ImpliedDecimal is numeric text without a decimal point. Format.Pattern holds the
	// number of implied decimal places.
	ImpliedDecimal
	Boolean
	Date
)

var cellTypeNames = [...]string{
	Text:           "string",
	Integer:        "integer",
	Float:          "float",
	Decimal:        "decimal",
	ImpliedDecimal: "implied-decimal",
	Boolean:        "boolean",
	Date:           "date",
}

func (t CellType) String() string {
	if int(t) < len(cellTypeNames) {
		return cellTypeNames[t]
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// ParseCellType maps a type name as written in schema files to a CellType.
func ParseCellType(name string) (CellType, bool) {
	switch name {
	case "", "string", "text":
		return Text, true
	case "integer", "int":
		return Integer, true
	case "float":
		return Float, true
	case "decimal":
		return Decimal, true
	case "implied-decimal", "implied_decimal":
		return ImpliedDecimal, true
	case "boolean", "bool":
		return Boolean, true
	case "date":
		return Date, true
	}
	return Text, false
}

// IsNumber reports whether values of the type are numeric.
func (t CellType) IsNumber() bool {
	switch t {
	case Integer, Float, Decimal, ImpliedDecimal:
		return true
	}
	return false
}

// Format identifies how a cell converts between text and value.
type Format struct {
	Type CellType
	// Pattern is type specific: a regexp for text, a Go time layout for dates, "Y|YES;N|NO"
	// style literals for booleans, a decimal count for implied decimals and a "0.00" style
	// fraction pattern for floats and decimals.
	Pattern string
	// Locale is a BCP 47 tag. Empty inherits the schema locale.
	Locale string
}

// Alignment decides which side of a fixed-width cell carries the value.
type Alignment uint8

const (
	Left Alignment = iota
	Right
	Center
)

func (a Alignment) String() string {
	switch a {
	case Left:
		return "left"
	case Right:
		return "right"
	case Center:
		return "center"
	}
	return "alignment(" + strconv.Itoa(int(a)) + ")"
}

// Cell describes one cell of a line.
type Cell struct {
	// Name may be blank for cells that are only used positionally.
	Name   string
	Format Format

	// Width is the fixed-width field length in characters.
	Width     int
	Alignment Alignment
	// PadChar overrides the line pad character for this cell.
	PadChar rune
	// NoTrim keeps pad characters when reading.
	NoTrim bool

	// Default is used when the input has no or blank text for the cell.
	Default   *string
	Mandatory bool
	// MaxLength caps the text length. Zero means no cap.
	MaxLength int
	// Condition makes this a control cell that decides whether its line applies.
	Condition Condition

	IgnoreRead  bool
	IgnoreWrite bool
}

// HasDefault reports whether a default value is declared.
func (c *Cell) HasDefault() bool {
	return c.Default != nil
}

// DefaultText returns the default value text, "" when none is declared.
func (c *Cell) DefaultText() string {
	return strs.StrPtrOrElse(c.Default, "")
}

// Pad returns the effective pad character of the cell within line l.
func (c *Cell) Pad(l *Line) rune {
	if c.PadChar != 0 {
		return c.PadChar
	}
	return l.FillChar()
}

// Clone returns a copy of c that does not share the default value pointer.
func (c Cell) Clone() Cell {
	if c.Default != nil {
		c.Default = strs.StrPtr(*c.Default)
	}
	return c
}
