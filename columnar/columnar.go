// Package columnar collects parsed records into Apache Arrow record batches, one Arrow schema
// per line type.
package columnar

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/shopspring/decimal"

	"github.com/oleg578/swiftflat/model"
	"github.com/oleg578/swiftflat/schema"
)

// decimalPrecision is the precision of every decimal column.
const decimalPrecision = 38

var (
	// ErrLineType is returned when a record is appended to the builder of another line type.
	ErrLineType = errors.New("columnar: record line type does not match builder")
	// ErrValueKind is returned when a value cannot be stored in the column of its cell.
	ErrValueKind = errors.New("columnar: value kind does not match column type")
)

type column struct {
	cell  string
	index int
	scale int32
}

// Builder appends records of one line type to Arrow column builders. Columns are the named
// cells of the line in schema order; a name used twice maps to its first cell. Cells that are
// Empty or absent from a record are null.
type Builder struct {
	lineType string
	schema   *arrow.Schema
	columns  []column
	rb       *array.RecordBuilder
	rows     int
}

// NewBuilder returns a Builder for l allocating from mem, or from a Go allocator when mem is nil.
func NewBuilder(l *schema.Line, mem memory.Allocator) *Builder {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	var fields []arrow.Field
	var columns []column
	seen := make(map[string]bool, len(l.Cells))
	for i := range l.Cells {
		c := &l.Cells[i]
		if c.Name == "" || seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		typ, scale := columnType(c)
		fields = append(fields, arrow.Field{Name: c.Name, Type: typ, Nullable: true})
		columns = append(columns, column{cell: c.Name, index: len(columns), scale: scale})
	}
	s := arrow.NewSchema(fields, nil)
	return &Builder{
		lineType: l.LineType,
		schema:   s,
		columns:  columns,
		rb:       array.NewRecordBuilder(mem, s),
	}
}

// columnType maps a cell format to an Arrow type. Decimals get a fixed scale when the format
// declares one and are kept as text otherwise.
func columnType(c *schema.Cell) (arrow.DataType, int32) {
	switch c.Format.Type {
	case schema.Integer:
		return arrow.PrimitiveTypes.Int64, 0
	case schema.Float:
		return arrow.PrimitiveTypes.Float64, 0
	case schema.Boolean:
		return arrow.FixedWidthTypes.Boolean, 0
	case schema.Date:
		return &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"}, 0
	case schema.ImpliedDecimal:
		places, _ := strconv.Atoi(c.Format.Pattern)
		return &arrow.Decimal128Type{Precision: decimalPrecision, Scale: int32(places)}, int32(places)
	case schema.Decimal:
		if scale, ok := fractionDigits(c.Format.Pattern); ok {
			return &arrow.Decimal128Type{Precision: decimalPrecision, Scale: scale}, scale
		}
	}
	return arrow.BinaryTypes.String, 0
}

func fractionDigits(pattern string) (int32, bool) {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '.' {
			return int32(len(pattern) - i - 1), true
		}
	}
	return 0, false
}

// Schema returns the Arrow schema of the batches.
func (b *Builder) Schema() *arrow.Schema {
	return b.schema
}

// LineType returns the line type the builder accepts.
func (b *Builder) LineType() string {
	return b.lineType
}

// Len returns the number of rows appended since the last batch.
func (b *Builder) Len() int {
	return b.rows
}

// Append adds rec as one row. On error no row is added.
func (b *Builder) Append(rec *model.Record) error {
	if rec.LineType != b.lineType {
		return fmt.Errorf("%w: '%s' into '%s'", ErrLineType, rec.LineType, b.lineType)
	}
	for _, col := range b.columns {
		v := rec.Value(col.cell)
		if !v.IsEmpty() && !fits(b.schema.Field(col.index).Type, v) {
			return fmt.Errorf("%w: cell '%s' holds %v", ErrValueKind, col.cell, v.Kind())
		}
	}
	for _, col := range b.columns {
		appendValue(b.rb.Field(col.index), rec.Value(col.cell), col.scale)
	}
	b.rows++
	return nil
}

func fits(typ arrow.DataType, v model.Value) bool {
	switch typ.ID() {
	case arrow.INT64:
		return v.Kind() == model.Integer
	case arrow.FLOAT64:
		return v.Kind() == model.Float || v.Kind() == model.Integer
	case arrow.BOOL:
		return v.Kind() == model.Boolean
	case arrow.TIMESTAMP:
		return v.Kind() == model.Date
	case arrow.DECIMAL128:
		return v.Kind() == model.Decimal || v.Kind() == model.Integer
	}
	return true
}

func appendValue(fb array.Builder, v model.Value, scale int32) {
	if v.IsEmpty() {
		fb.AppendNull()
		return
	}
	switch b := fb.(type) {
	case *array.Int64Builder:
		i, _ := v.Int()
		b.Append(i)
	case *array.Float64Builder:
		if f, ok := v.Float(); ok {
			b.Append(f)
			return
		}
		i, _ := v.Int()
		b.Append(float64(i))
	case *array.BooleanBuilder:
		x, _ := v.Bool()
		b.Append(x)
	case *array.TimestampBuilder:
		t, _ := v.Time()
		b.Append(arrow.Timestamp(t.UnixMilli()))
	case *array.Decimal128Builder:
		d, ok := v.Decimal()
		if !ok {
			i, _ := v.Int()
			d = decimal.NewFromInt(i)
		}
		b.Append(decimal128.FromBigInt(d.Shift(scale).Round(0).BigInt()))
	case *array.StringBuilder:
		b.Append(v.String())
	default:
		fb.AppendNull()
	}
}

// NewRecord returns the rows appended so far as one batch and starts a new one. The caller
// must release the batch.
func (b *Builder) NewRecord() arrow.Record {
	b.rows = 0
	return b.rb.NewRecord()
}

// Release frees the column builders.
func (b *Builder) Release() {
	b.rb.Release()
}
