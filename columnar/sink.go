package columnar

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/oleg578/swiftflat/model"
	"github.com/oleg578/swiftflat/schema"
)

// DefaultBatchSize is the number of rows per batch when none is given.
const DefaultBatchSize = 1 << 12

// EmitFunc receives a finished batch of the given line type. It owns the batch and must
// release it.
type EmitFunc func(lineType string, batch arrow.Record) error

// Sink routes records to one Builder per line type of a schema and emits a batch whenever a
// builder holds batchSize rows. Records of line types the schema does not declare are
// skipped. A Sink is a swiftflat.LineHandler.
type Sink struct {
	builders  map[string]*Builder
	order     []*Builder
	batchSize int
	emit      EmitFunc
	skipped   int
}

// NewSink returns a Sink for the lines of s. A batchSize below 1 means DefaultBatchSize.
func NewSink(s *schema.Schema, mem memory.Allocator, batchSize int, emit EmitFunc) *Sink {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	sk := &Sink{builders: make(map[string]*Builder, len(s.Lines)), batchSize: batchSize, emit: emit}
	for i := range s.Lines {
		l := &s.Lines[i]
		if _, dup := sk.builders[l.LineType]; dup {
			continue
		}
		b := NewBuilder(l, mem)
		sk.builders[l.LineType] = b
		sk.order = append(sk.order, b)
	}
	return sk
}

// HandleLine appends rec to the builder of its line type.
func (s *Sink) HandleLine(rec *model.Record) error {
	b, ok := s.builders[rec.LineType]
	if !ok {
		s.skipped++
		return nil
	}
	if err := b.Append(rec); err != nil {
		return err
	}
	if b.Len() >= s.batchSize {
		return s.emit(b.LineType(), b.NewRecord())
	}
	return nil
}

// Flush emits the pending rows of every line type, in schema order.
func (s *Sink) Flush() error {
	for _, b := range s.order {
		if b.Len() == 0 {
			continue
		}
		if err := s.emit(b.LineType(), b.NewRecord()); err != nil {
			return err
		}
	}
	return nil
}

// Skipped returns the number of records of undeclared line types.
func (s *Sink) Skipped() int {
	return s.skipped
}

// Schema returns the Arrow schema of lineType.
func (s *Sink) Schema(lineType string) (*arrow.Schema, bool) {
	b, ok := s.builders[lineType]
	if !ok {
		return nil, false
	}
	return b.Schema(), true
}

// Release frees every builder.
func (s *Sink) Release() {
	for _, b := range s.order {
		b.Release()
	}
}
