package swiftflat

import (
	"github.com/oleg578/swiftflat/schema"
)

// lineMatcher decides whether its line definition applies to the next input line. It keeps
// the occurrence budget of the line; only selection spends it, peeking never does.
type lineMatcher struct {
	line     *schema.Line
	left     int
	controls []controlCell
}

// controlCell is a cell whose text selects the line. offset is the character position in a
// fixed-width line, index the field position in a CSV line.
type controlCell struct {
	cell   *schema.Cell
	offset int
	index  int
}

func newLineMatcher(l *schema.Line) *lineMatcher {
	m := &lineMatcher{line: l, left: l.MaxOccurs()}
	offset := 0
	for i := range l.Cells {
		c := &l.Cells[i]
		if c.Condition != nil {
			m.controls = append(m.controls, controlCell{cell: c, offset: offset, index: i})
		}
		offset += c.Width
	}
	return m
}

// rebind points the matcher at a line derived from a CSV header. Control cells are looked up
// at their positions in the derived line; the budget left is kept.
func (m *lineMatcher) rebind(l *schema.Line) {
	m.line = l
	m.controls = m.controls[:0]
	for i := range l.Cells {
		c := &l.Cells[i]
		if c.Condition != nil && !c.IgnoreRead {
			m.controls = append(m.controls, controlCell{cell: c, index: i})
		}
	}
}

func (m *lineMatcher) exhausted() bool {
	return m.left <= 0
}

func (m *lineMatcher) consume() {
	if !m.line.Infinite() {
		m.left--
	}
}

// peek reports whether every control cell holds at the start of the current fixed-width
// line. The cursor is restored whatever the outcome.
func (m *lineMatcher) peek(w *window) (bool, error) {
	if len(m.controls) == 0 {
		return true, nil
	}
	w.markLine()
	defer w.resetLine()
	for _, cc := range m.controls {
		w.resetLine()
		raw, ok, err := w.readField(cc.offset, cc.cell.Width)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		if !cc.cell.Condition.Satisfies(trimCell(raw, cc.cell, m.line)) {
			return false, nil
		}
	}
	return true, nil
}

// matchFields reports whether every control cell holds in the split fields of a CSV line.
func (m *lineMatcher) matchFields(fields []string) bool {
	for _, cc := range m.controls {
		if cc.index >= len(fields) || !cc.cell.Condition.Satisfies(fields[cc.index]) {
			return false
		}
	}
	return true
}

// selectFixed returns the index of the first matcher with budget left whose control cells
// hold, -1 when none does. The window is left at the start of the line.
func selectFixed(matchers []*lineMatcher, w *window) (int, error) {
	for i, m := range matchers {
		if m.exhausted() {
			continue
		}
		ok, err := m.peek(w)
		if err != nil {
			return -1, err
		}
		if ok {
			m.consume()
			return i, nil
		}
	}
	return -1, nil
}
