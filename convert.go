package swiftflat

import (
	"fmt"
	"unicode/utf8"

	"github.com/jf-tech/go-corelib/strs"

	"github.com/oleg578/swiftflat/model"
	"github.com/oleg578/swiftflat/schema"
	"github.com/oleg578/swiftflat/textfmt"
)

// DefaultCellCacheSize is the default number of parsed values remembered per cell.
const DefaultCellCacheSize = 64

// sink receives the problems found while assembling one line.
type sink interface {
	// cellProblem reports a cell level error. A non-nil result ends parsing.
	cellProblem(c *schema.Cell, text string, err error) error
	// lineProblem reports a line shape error under the policy that applies to it. omit
	// tells the assembler to drop the line; a non-nil error ends parsing.
	lineProblem(err error) (omit bool, fatal error)
}

// converter turns the text of one schema cell into its value and back.
type converter struct {
	cell   *schema.Cell
	f      textfmt.Formatter
	def    model.Value
	values *textfmt.Cache[string, model.Value]
}

func newConverter(c *schema.Cell, locale string, formats *textfmt.FormatCache, cacheSize int) (*converter, error) {
	key := textfmt.Key{
		Type:    c.Format.Type,
		Pattern: c.Format.Pattern,
		Locale:  strs.FirstNonBlank(c.Format.Locale, locale),
	}
	f, err := formats.Get(key)
	if err != nil {
		return nil, fmt.Errorf("swiftflat: cell '%s': %w", c.Name, err)
	}
	if c.Format.Type == schema.Text {
		cacheSize = 0
	}
	cv := &converter{cell: c, f: f, values: textfmt.NewCache[string, model.Value](cacheSize)}
	if text := c.DefaultText(); text != "" {
		if cv.def, err = f.Parse(text); err != nil {
			return nil, fmt.Errorf("swiftflat: cell '%s' default value: %w", c.Name, err)
		}
	}
	return cv, nil
}

// newConverters builds one converter per cell of l. Each remembers at most as many values as
// the line may occur.
func newConverters(l *schema.Line, locale string, formats *textfmt.FormatCache, maxCache int) ([]*converter, error) {
	convs := make([]*converter, len(l.Cells))
	for i := range l.Cells {
		cv, err := newConverter(&l.Cells[i], locale, formats, min(maxCache, l.MaxOccurs()))
		if err != nil {
			return nil, fmt.Errorf("line '%s': %w", l.LineType, err)
		}
		convs[i] = cv
	}
	return convs, nil
}

// parse converts trimmed cell text. ok is false when the cell is left out of the record.
func (cv *converter) parse(text string, s sink) (v model.Value, ok bool, err error) {
	if limit := cv.cell.MaxLength; limit > 0 && utf8.RuneCountInString(text) > limit {
		raw := text
		text = truncate(text, limit)
		if err := s.cellProblem(cv.cell, raw, ErrMaxLength); err != nil {
			return model.Value{}, false, err
		}
	}
	if text == "" {
		if cv.cell.HasDefault() {
			return cv.def, true, nil
		}
		if cv.cell.Mandatory {
			if err := s.cellProblem(cv.cell, text, ErrMandatoryMissing); err != nil {
				return model.Value{}, false, err
			}
		}
		return model.EmptyValue(), true, nil
	}
	if v, ok := cv.values.Get(text); ok {
		return v, true, nil
	}
	v, perr := cv.f.Parse(text)
	if perr != nil {
		return model.Value{}, false, s.cellProblem(cv.cell, text, perr)
	}
	cv.values.Put(text, v)
	return v, true, nil
}

// format renders v. An Empty value of a cell with a default renders the default.
func (cv *converter) format(v model.Value) (string, error) {
	if v.IsEmpty() && cv.cell.HasDefault() {
		return cv.cell.DefaultText(), nil
	}
	text, err := cv.f.Format(v)
	if err != nil {
		return "", err
	}
	if limit := cv.cell.MaxLength; limit > 0 {
		text = truncate(text, limit)
	}
	return text, nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
