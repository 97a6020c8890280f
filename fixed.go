package swiftflat

import (
	"strings"

	"github.com/oleg578/swiftflat/model"
	"github.com/oleg578/swiftflat/schema"
)

// trimPad removes pad characters from the side opposite the alignment: trailing for left,
// leading for right and both for center. A numeric field made only of '0' padding is "0".
func trimPad(s string, pad rune, align schema.Alignment, numeric bool) string {
	t := s
	if align != schema.Left {
		t = strings.TrimLeftFunc(t, func(r rune) bool { return r == pad })
	}
	if align != schema.Right {
		t = strings.TrimRightFunc(t, func(r rune) bool { return r == pad })
	}
	if t == "" && s != "" && pad == '0' && numeric {
		return "0"
	}
	return t
}

func trimCell(raw string, c *schema.Cell, l *schema.Line) string {
	if c.NoTrim {
		return raw
	}
	return trimPad(raw, c.Pad(l), c.Alignment, c.Format.Type.IsNumber())
}

// fixedAssembler builds records from fixed-width lines of one definition.
type fixedAssembler struct {
	line  *schema.Line
	convs []*converter
}

// assemble reads the cells of the current line. Once a cell finds the line exhausted the
// remaining cells only contribute their defaults, and the line is reported as insufficient
// once, provided at least one cell was read. It returns nil when the line produced nothing.
func (a *fixedAssembler) assemble(w *window, s sink) (*model.Record, error) {
	cells := a.line.Cells
	rec := model.NewRecord(a.line.LineType, len(cells))

	var defaultsOnly, oneRead, oneIgnored, reported bool
	for i := range cells {
		c := &cells[i]
		cv := a.convs[i]
		if defaultsOnly {
			if c.HasDefault() {
				rec.Add(c.Name, cv.def)
			}
			continue
		}

		if c.IgnoreRead {
			if c.HasDefault() {
				rec.Add(c.Name, cv.def)
			}
			n, err := w.skip(c.Width)
			if err != nil {
				return nil, err
			}
			if n > 0 || c.Width == 0 {
				oneIgnored = true
			}
			if n != c.Width && oneRead {
				defaultsOnly = true
			}
			continue
		}

		raw, ok, err := w.readField(0, c.Width)
		if err != nil {
			return nil, err
		}
		if !ok {
			if !oneRead {
				continue
			}
			defaultsOnly = true
			if c.HasDefault() {
				rec.Add(c.Name, cv.def)
			}
			if !reported {
				omit, err := s.lineProblem(ErrInsufficientLine)
				if err != nil || omit {
					return nil, err
				}
				reported = true
			}
			continue
		}

		oneRead = true
		v, keep, err := cv.parse(trimCell(raw, c, a.line), s)
		if err != nil {
			return nil, err
		}
		if keep {
			rec.Add(c.Name, v)
		}
	}
	if rec.Len() == 0 && !oneIgnored {
		return nil, nil
	}
	return rec, nil
}
