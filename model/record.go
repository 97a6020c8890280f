package model

import "strings"

// Cell is a named value. Names may be blank for positional use.
type Cell struct {
	Name  string
	Value Value
}

// Record is one parsed line: its line type, its 1-based line number in the input and
// its cells in schema order. Duplicate cell names are not rejected.
type Record struct {
	LineType   string
	LineNumber int64
	Cells      []Cell
}

// NewRecord creates an empty record with room for capacity cells.
func NewRecord(lineType string, capacity int) *Record {
	if capacity < 0 {
		capacity = 0
	}
	return &Record{LineType: lineType, Cells: make([]Cell, 0, capacity)}
}

// Add appends a cell.
func (r *Record) Add(name string, v Value) {
	r.Cells = append(r.Cells, Cell{Name: name, Value: v})
}

// Len returns the number of cells.
func (r *Record) Len() int { return len(r.Cells) }

// Get returns the first cell named name. ok is false when the record has no such cell,
// which is different from a cell that holds the Empty value.
func (r *Record) Get(name string) (c Cell, ok bool) {
	for _, c := range r.Cells {
		if c.Name == name {
			return c, true
		}
	}
	return Cell{}, false
}

// Value returns the value of the cell named name, Empty when absent.
func (r *Record) Value(name string) Value {
	c, _ := r.Get(name)
	return c.Value
}

// Set replaces the value of the first cell named name, appending a new cell when absent.
func (r *Record) Set(name string, v Value) {
	for i := range r.Cells {
		if r.Cells[i].Name == name {
			r.Cells[i].Value = v
			return
		}
	}
	r.Add(name, v)
}

func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteString(r.LineType)
	sb.WriteByte('{')
	for i, c := range r.Cells {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.Name)
		sb.WriteByte('=')
		sb.WriteString(c.Value.String())
	}
	sb.WriteByte('}')
	return sb.String()
}
