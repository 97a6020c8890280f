// Package mapping converts between records and Go structs through statically declared
// field tables.
//
// A Mapping lists, for one line type, which cell feeds which struct field:
//
//	var people = mapping.New[Person]("Person",
//		mapping.String("name", func(p *Person) *string { return &p.Name }),
//		mapping.Int("age", func(p *Person) *int64 { return &p.Age }),
//	)
//
// Cells without a field are ignored by Decode; fields without a cell are left untouched.
package mapping

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oleg578/swiftflat"
	"github.com/oleg578/swiftflat/model"
)

var (
	// ErrLineType is returned when a record of another line type is decoded.
	ErrLineType = errors.New("mapping: line type mismatch")
	// ErrValueKind is returned when a cell value does not fit its struct field.
	ErrValueKind = errors.New("mapping: value kind does not fit field")
)

// Field binds one cell to a struct field.
type Field[T any] struct {
	Cell string
	Get  func(v *T) model.Value
	Set  func(v *T, value model.Value) error
}

// Mapping binds the cells of one line type to the fields of T.
type Mapping[T any] struct {
	LineType string
	Fields   []Field[T]
}

// New returns a mapping for lineType.
func New[T any](lineType string, fields ...Field[T]) *Mapping[T] {
	return &Mapping[T]{LineType: lineType, Fields: fields}
}

// Decode fills a new T from rec. Empty cells set the zero value.
func (m *Mapping[T]) Decode(rec *model.Record) (*T, error) {
	v := new(T)
	if err := m.DecodeInto(rec, v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeInto fills v from rec.
func (m *Mapping[T]) DecodeInto(rec *model.Record, v *T) error {
	if rec.LineType != m.LineType {
		return fmt.Errorf("%w: got '%s', want '%s'", ErrLineType, rec.LineType, m.LineType)
	}
	for _, f := range m.Fields {
		c, ok := rec.Get(f.Cell)
		if !ok || f.Set == nil {
			continue
		}
		if err := f.Set(v, c.Value); err != nil {
			return fmt.Errorf("line %d cell '%s': %w", rec.LineNumber, f.Cell, err)
		}
	}
	return nil
}

// Encode builds a record of the mapping's line type from v.
func (m *Mapping[T]) Encode(v *T) *model.Record {
	rec := model.NewRecord(m.LineType, len(m.Fields))
	for _, f := range m.Fields {
		if f.Get == nil {
			continue
		}
		rec.Add(f.Cell, f.Get(v))
	}
	return rec
}

// Handler returns a swiftflat.LineHandler that decodes the records of the mapping's line type
// and passes them to fn. Records of other line types are skipped.
func (m *Mapping[T]) Handler(fn func(v *T) error) swiftflat.LineHandler {
	return swiftflat.LineHandlerFunc(func(rec *model.Record) error {
		if rec.LineType != m.LineType {
			return nil
		}
		v, err := m.Decode(rec)
		if err != nil {
			return err
		}
		return fn(v)
	})
}

func kindError(got model.Value, want string) error {
	return fmt.Errorf("%w: %v into %s", ErrValueKind, got.Kind(), want)
}

// String binds a text cell. Values of other kinds are stored in their plain text form.
func String[T any](cell string, field func(v *T) *string) Field[T] {
	return Field[T]{
		Cell: cell,
		Get:  func(v *T) model.Value { return model.TextValue(*field(v)) },
		Set: func(v *T, value model.Value) error {
			*field(v) = value.String()
			return nil
		},
	}
}

// Int binds an integer cell.
func Int[T any](cell string, field func(v *T) *int64) Field[T] {
	return Field[T]{
		Cell: cell,
		Get:  func(v *T) model.Value { return model.IntegerValue(*field(v)) },
		Set: func(v *T, value model.Value) error {
			if value.IsEmpty() {
				*field(v) = 0
				return nil
			}
			i, ok := value.Int()
			if !ok {
				return kindError(value, "int64")
			}
			*field(v) = i
			return nil
		},
	}
}

// Float binds a float cell. Integer values are converted.
func Float[T any](cell string, field func(v *T) *float64) Field[T] {
	return Field[T]{
		Cell: cell,
		Get:  func(v *T) model.Value { return model.FloatValue(*field(v)) },
		Set: func(v *T, value model.Value) error {
			switch value.Kind() {
			case model.Empty:
				*field(v) = 0
			case model.Float:
				*field(v), _ = value.Float()
			case model.Integer:
				i, _ := value.Int()
				*field(v) = float64(i)
			case model.Decimal:
				d, _ := value.Decimal()
				*field(v) = d.InexactFloat64()
			default:
				return kindError(value, "float64")
			}
			return nil
		},
	}
}

// Decimal binds a decimal or implied decimal cell. Integer values are converted.
func Decimal[T any](cell string, field func(v *T) *decimal.Decimal) Field[T] {
	return Field[T]{
		Cell: cell,
		Get:  func(v *T) model.Value { return model.DecimalValue(*field(v)) },
		Set: func(v *T, value model.Value) error {
			switch value.Kind() {
			case model.Empty:
				*field(v) = decimal.Zero
			case model.Decimal:
				*field(v), _ = value.Decimal()
			case model.Integer:
				i, _ := value.Int()
				*field(v) = decimal.NewFromInt(i)
			default:
				return kindError(value, "decimal")
			}
			return nil
		},
	}
}

// Bool binds a boolean cell.
func Bool[T any](cell string, field func(v *T) *bool) Field[T] {
	return Field[T]{
		Cell: cell,
		Get:  func(v *T) model.Value { return model.BooleanValue(*field(v)) },
		Set: func(v *T, value model.Value) error {
			if value.IsEmpty() {
				*field(v) = false
				return nil
			}
			b, ok := value.Bool()
			if !ok {
				return kindError(value, "bool")
			}
			*field(v) = b
			return nil
		},
	}
}

// Time binds a date cell. The zero time encodes as an Empty cell.
func Time[T any](cell string, field func(v *T) *time.Time) Field[T] {
	return Field[T]{
		Cell: cell,
		Get: func(v *T) model.Value {
			t := *field(v)
			if t.IsZero() {
				return model.EmptyValue()
			}
			return model.DateValue(t)
		},
		Set: func(v *T, value model.Value) error {
			if value.IsEmpty() {
				*field(v) = time.Time{}
				return nil
			}
			t, ok := value.Time()
			if !ok {
				return kindError(value, "time.Time")
			}
			*field(v) = t
			return nil
		},
	}
}
