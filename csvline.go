package swiftflat

import (
	"strconv"

	"github.com/oleg578/swiftflat/model"
	"github.com/oleg578/swiftflat/schema"
)

// extraCellPrefix names the cells of fields beyond the end of a CSV line definition. The
// field position, starting at 1, follows the prefix.
const extraCellPrefix = "@extra"

// csvAssembler builds records from CSV lines of one definition. A definition that takes its
// columns from a header line starts with the master definition and switches to the derived
// one once the header has been read.
type csvAssembler struct {
	master        *schema.Line
	line          *schema.Line
	convs         []*converter
	pendingHeader bool
	build         func(l *schema.Line) ([]*converter, error)
}

func newCSVAssembler(l *schema.Line, build func(l *schema.Line) ([]*converter, error)) (*csvAssembler, error) {
	convs, err := build(l)
	if err != nil {
		return nil, err
	}
	return &csvAssembler{
		master:        l,
		line:          l,
		convs:         convs,
		pendingHeader: l.HeaderAsSchema,
		build:         build,
	}, nil
}

// useHeader derives the active definition from header fields. Each mandatory master column
// missing from the header is reported once, here, and not for every data line.
func (a *csvAssembler) useHeader(header []string, s sink) error {
	derived, missing := a.master.DeriveFromHeader(header)
	convs, err := a.build(&derived)
	if err != nil {
		return err
	}
	a.line, a.convs, a.pendingHeader = &derived, convs, false
	for _, name := range missing {
		master, _ := a.master.CellByName(name)
		if err := s.cellProblem(master, "", ErrMandatoryMissing); err != nil {
			return err
		}
	}
	return nil
}

// assemble matches fields to cells by position. Fields beyond the definition become text
// cells unless the overflow policy drops the line. Cells beyond the fields get their defaults.
// A line that yields no cell produces no record.
func (a *csvAssembler) assemble(fields []string, s sink) (*model.Record, error) {
	cells := a.line.Cells
	rec := model.NewRecord(a.line.LineType, len(cells)+1)

	for i := 0; i < len(fields) && i < len(cells); i++ {
		if err := a.add(rec, i, fields[i], s); err != nil {
			return nil, err
		}
	}

	if len(fields) > len(cells) {
		omit, err := s.lineProblem(ErrLineOverflow)
		if err != nil || omit {
			return nil, err
		}
		for i := len(cells); i < len(fields); i++ {
			rec.Add(extraCellPrefix+strconv.Itoa(i+1), model.TextValue(fields[i]))
		}
	}

	if a.short(len(fields)) {
		omit, err := s.lineProblem(ErrInsufficientLine)
		if err != nil || omit {
			return nil, err
		}
	}
	for i := len(fields); i < len(cells); i++ {
		if err := a.add(rec, i, "", s); err != nil {
			return nil, err
		}
	}
	if rec.Len() == 0 {
		return nil, nil
	}
	return rec, nil
}

// short reports whether a cell that is read lies beyond n fields.
func (a *csvAssembler) short(n int) bool {
	for i := n; i < len(a.line.Cells); i++ {
		if !a.line.Cells[i].IgnoreRead {
			return true
		}
	}
	return false
}

func (a *csvAssembler) add(rec *model.Record, i int, text string, s sink) error {
	c := &a.line.Cells[i]
	cv := a.convs[i]
	if c.IgnoreRead {
		if c.HasDefault() {
			rec.Add(c.Name, cv.def)
		}
		return nil
	}
	v, keep, err := cv.parse(text, s)
	if err != nil {
		return err
	}
	if keep {
		rec.Add(c.Name, v)
	}
	return nil
}
