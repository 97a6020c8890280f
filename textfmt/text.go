package textfmt

import (
	"fmt"
	"regexp"
	"time"

	"github.com/jf-tech/go-corelib/caches"

	"github.com/oleg578/swiftflat/model"
	"github.com/oleg578/swiftflat/schema"
)

// textFormat accepts any text, or with a pattern only text the whole of which matches it.
type textFormat struct {
	re *regexp.Regexp
}

func newTextFormat(pattern string) (*textFormat, error) {
	if pattern == "" {
		return &textFormat{}, nil
	}
	re, err := caches.GetRegex("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPattern, err)
	}
	return &textFormat{re: re}, nil
}

func (f *textFormat) Parse(text string) (model.Value, error) {
	if f.re != nil && !f.re.MatchString(text) {
		return model.Value{}, fmt.Errorf("%w: %q does not match %s", ErrSyntax, text, f.re)
	}
	return model.TextValue(text), nil
}

func (f *textFormat) Format(v model.Value) (string, error) {
	return v.String(), nil
}

const defaultDateLayout = "2006-01-02"

// dateFormat uses Go reference time layouts. Times without a zone are UTC.
type dateFormat struct {
	layout string
}

func newDateFormat(layout string) *dateFormat {
	if layout == "" {
		layout = defaultDateLayout
	}
	return &dateFormat{layout: layout}
}

func (f *dateFormat) Parse(text string) (model.Value, error) {
	t, err := time.ParseInLocation(f.layout, text, time.UTC)
	if err != nil {
		return model.Value{}, syntaxError(text, schema.Date)
	}
	return model.DateValue(t), nil
}

func (f *dateFormat) Format(v model.Value) (string, error) {
	switch v.Kind() {
	case model.Empty:
		return "", nil
	case model.Text:
		t, _ := v.Text()
		return t, nil
	case model.Date:
		t, _ := v.Time()
		return t.Format(f.layout), nil
	}
	return "", kindError(v, schema.Date)
}
