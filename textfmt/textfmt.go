// Package textfmt converts cell text to typed values and back.
//
// A Formatter is built from a Key (cell type, pattern and locale) and is immutable, so one
// instance serves every cell declaring the same Key. FormatCache keeps those instances for
// the duration of a parsing or composing session.
package textfmt

import (
	"errors"
	"fmt"

	"github.com/oleg578/swiftflat/model"
	"github.com/oleg578/swiftflat/schema"
)

var (
	// ErrSyntax is returned when text does not parse as the declared type.
	ErrSyntax = errors.New("textfmt: invalid syntax")
	// ErrPattern is returned when a pattern cannot be used for the declared type.
	ErrPattern = errors.New("textfmt: invalid pattern")
	// ErrValueKind is returned when a value cannot be formatted as the declared type.
	ErrValueKind = errors.New("textfmt: value kind not supported")
)

// Formatter converts between the text of one cell type and its value.
type Formatter interface {
	// Parse converts non-blank text into a value.
	Parse(text string) (model.Value, error)
	// Format renders v. Empty values render as "" and Text values are written unchanged.
	Format(v model.Value) (string, error)
}

// Key identifies a formatter.
type Key struct {
	Type    schema.CellType
	Pattern string
	Locale  string
}

func (k Key) String() string {
	return fmt.Sprintf("%v(%q, %q)", k.Type, k.Pattern, k.Locale)
}

// New builds the formatter for k.
func New(k Key) (Formatter, error) {
	switch k.Type {
	case schema.Text:
		return newTextFormat(k.Pattern)
	case schema.Boolean:
		return newBooleanFormat(k.Pattern)
	case schema.Date:
		return newDateFormat(k.Pattern), nil
	case schema.ImpliedDecimal:
		return newImpliedDecimalFormat(k.Pattern)
	case schema.Integer, schema.Float, schema.Decimal:
		sym, err := LocaleSymbols(k.Locale)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPattern, err)
		}
		return newNumberFormat(k.Type, k.Pattern, sym), nil
	}
	return nil, fmt.Errorf("%w: unknown cell type %v", ErrPattern, k.Type)
}

// DefaultFormatCacheSize is the number of formatters a FormatCache keeps by default.
const DefaultFormatCacheSize = 128

// FormatCache hands out formatters by Key, building each one once. When full, the oldest
// inserted formatter is dropped. It is not safe for concurrent use.
type FormatCache struct {
	cache *Cache[Key, Formatter]
}

// NewFormatCache returns a cache of at most capacity formatters.
func NewFormatCache(capacity int) *FormatCache {
	return &FormatCache{cache: NewCache[Key, Formatter](capacity)}
}

// Get returns the formatter of k.
func (fc *FormatCache) Get(k Key) (Formatter, error) {
	if f, ok := fc.cache.Get(k); ok {
		return f, nil
	}
	f, err := New(k)
	if err != nil {
		return nil, err
	}
	fc.cache.Put(k, f)
	return f, nil
}

// Len returns the number of cached formatters.
func (fc *FormatCache) Len() int {
	return fc.cache.Len()
}

func syntaxError(text string, typ schema.CellType) error {
	return fmt.Errorf("%w: %q is not a valid %v", ErrSyntax, text, typ)
}

func kindError(v model.Value, typ schema.CellType) error {
	return fmt.Errorf("%w: cannot format %v value as %v", ErrValueKind, v.Kind(), typ)
}
