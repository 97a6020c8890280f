// Package model holds the typed records produced by parsing and consumed by composing.
package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	Empty Kind = iota
	Text
	Integer
	Float
	Decimal
	Boolean
	Date
)

var kindNames = [...]string{
	Empty:   "empty",
	Text:    "text",
	Integer: "integer",
	Float:   "float",
	Decimal: "decimal",
	Boolean: "boolean",
	Date:    "date",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a tagged union of the cell value types. The zero Value is Empty.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	d    decimal.Decimal
	b    bool
	t    time.Time
}

// EmptyValue returns the Empty variant. It is distinct from a cell being absent from a record.
func EmptyValue() Value { return Value{} }

func TextValue(s string) Value { return Value{kind: Text, s: s} }
func IntegerValue(i int64) Value { return Value{kind: Integer, i: i} }
func FloatValue(f float64) Value { return Value{kind: Float, f: f} }
func DecimalValue(d decimal.Decimal) Value { return Value{kind: Decimal, d: d} }
func BooleanValue(b bool) Value { return Value{kind: Boolean, b: b} }
func DateValue(t time.Time) Value { return Value{kind: Date, t: t} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v is the Empty variant.
func (v Value) IsEmpty() bool { return v.kind == Empty }

// Text returns the string held by a Text value.
func (v Value) Text() (string, bool) { return v.s, v.kind == Text }

// Int returns the integer held by an Integer value.
func (v Value) Int() (int64, bool) { return v.i, v.kind == Integer }

// Float returns the float held by a Float value.
func (v Value) Float() (float64, bool) { return v.f, v.kind == Float }

// Decimal returns the decimal held by a Decimal value.
func (v Value) Decimal() (decimal.Decimal, bool) { return v.d, v.kind == Decimal }

// Bool returns the boolean held by a Boolean value.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == Boolean }

// Time returns the instant held by a Date value.
func (v Value) Time() (time.Time, bool) { return v.t, v.kind == Date }

// Equal compares kind and payload. Decimals compare numerically and dates by instant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Empty:
		return true
	case Text:
		return v.s == o.s
	case Integer:
		return v.i == o.i
	case Float:
		return v.f == o.f
	case Decimal:
		return v.d.Equal(o.d)
	case Boolean:
		return v.b == o.b
	case Date:
		return v.t.Equal(o.t)
	}
	return false
}

// String renders v without any schema format. It is meant for logs and debugging output;
// composing goes through the schema formatters.
func (v Value) String() string {
	switch v.kind {
	case Text:
		return v.s
	case Integer:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case Decimal:
		return v.d.String()
	case Boolean:
		return strconv.FormatBool(v.b)
	case Date:
		return v.t.Format(time.RFC3339Nano)
	}
	return ""
}

// Any returns the payload as a plain Go value, nil for Empty.
func (v Value) Any() any {
	switch v.kind {
	case Text:
		return v.s
	case Integer:
		return v.i
	case Float:
		return v.f
	case Decimal:
		return v.d
	case Boolean:
		return v.b
	case Date:
		return v.t
	}
	return nil
}
