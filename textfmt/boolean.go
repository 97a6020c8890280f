package textfmt

import (
	"fmt"
	"strings"

	"github.com/oleg578/swiftflat/model"
	"github.com/oleg578/swiftflat/schema"
)

const defaultBooleanPattern = "true;false"

// booleanFormat matches literals case-insensitively. The pattern lists the true literals,
// then ';', then the false literals, each list separated by '|'. The first literal of each
// list is the one written when composing.
type booleanFormat struct {
	trues  []string
	falses []string
}

func newBooleanFormat(pattern string) (*booleanFormat, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = defaultBooleanPattern
	}
	parts := strings.Split(strings.TrimSpace(pattern), ";")
	if len(parts) > 2 {
		return nil, fmt.Errorf("%w: boolean pattern %q has more than two ';' separated lists", ErrPattern, pattern)
	}
	f := &booleanFormat{trues: splitLiterals(parts[0]), falses: []string{""}}
	if len(parts) == 2 {
		f.falses = splitLiterals(parts[1])
	}
	return f, nil
}

func splitLiterals(s string) []string {
	lits := strings.Split(s, "|")
	for i := range lits {
		lits[i] = strings.TrimSpace(lits[i])
	}
	return lits
}

func (f *booleanFormat) Parse(text string) (model.Value, error) {
	for _, l := range f.trues {
		if strings.EqualFold(l, text) {
			return model.BooleanValue(true), nil
		}
	}
	for _, l := range f.falses {
		if strings.EqualFold(l, text) {
			return model.BooleanValue(false), nil
		}
	}
	return model.Value{}, syntaxError(text, schema.Boolean)
}

func (f *booleanFormat) Format(v model.Value) (string, error) {
	switch v.Kind() {
	case model.Empty:
		return "", nil
	case model.Text:
		t, _ := v.Text()
		return t, nil
	case model.Boolean:
		if b, _ := v.Bool(); b {
			return f.trues[0], nil
		}
		return f.falses[0], nil
	}
	return "", kindError(v, schema.Boolean)
}
