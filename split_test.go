package swiftflat

import (
	"errors"
	"reflect"
	"testing"

	"github.com/oleg578/swiftflat/schema"
)

func TestSplitLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		line  string
		sep   string
		quote rune
		want  []string
	}{
		{name: "plain", line: "a,b,c", sep: ",", want: []string{"a", "b", "c"}},
		{name: "trailingEmpty", line: "a,b,", sep: ",", want: []string{"a", "b", ""}},
		{name: "onlySeparators", line: ",,", sep: ",", want: []string{"", "", ""}},
		{name: "regexMetaSeparator", line: "a.*b.*c", sep: ".*", want: []string{"a", "b", "c"}},
		{name: "multiCharSeparator", line: "x;;y", sep: ";;", want: []string{"x", "y"}},
		{name: "quoteDisabled", line: `a,"b,c"`, sep: ",", want: []string{"a", `"b`, `c"`}},
		{name: "quotedSeparator", line: `a,"b,c",d`, sep: ",", quote: '"', want: []string{"a", "b,c", "d"}},
		{name: "quotedFirstAndLast", line: `"x,y",z,"w"`, sep: ",", quote: '"', want: []string{"x,y", "z", "w"}},
		{name: "quotedEmpty", line: `"",a`, sep: ",", quote: '"', want: []string{"", "a"}},
		{name: "quotedThenTrailingSeparator", line: `"a",`, sep: ",", quote: '"', want: []string{"a", ""}},
		{name: "singleQuote", line: `'a;b';c`, sep: ";", quote: '\'', want: []string{"a;b", "c"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := splitLine(tc.line, tc.sep, tc.quote)
			if err != nil {
				t.Fatalf("splitLine() error = %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("splitLine() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSplitLineQuoteErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want error
	}{
		{name: "quoteInsideField", line: `ab"c,d`, want: ErrQuoteOpen},
		{name: "quoteAtFieldEnd", line: `a,b"`, want: ErrQuoteOpen},
		{name: "missingEnd", line: `a,"bc`, want: ErrQuoteMissingEnd},
		{name: "textAfterClose", line: `"ab"c,d`, want: ErrQuoteClose},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := splitLine(tc.line, ",", '"')
			if !errors.Is(err, tc.want) {
				t.Fatalf("splitLine() error = %v, want %v", err, tc.want)
			}
			if !errors.Is(err, ErrQuoteSyntax) {
				t.Fatalf("splitLine() error = %v does not wrap ErrQuoteSyntax", err)
			}
		})
	}
}

func TestFieldSplitterCachesPerSetting(t *testing.T) {
	t.Parallel()

	var s fieldSplitter
	s.reset(`a;"b;c"`)
	semi := &schema.Line{Separator: ";", Quote: '"'}
	comma := &schema.Line{}

	got, err := s.split(semi)
	if err != nil || !reflect.DeepEqual(got, []string{"a", "b;c"}) {
		t.Fatalf("split(;) = %q, %v", got, err)
	}
	got, err = s.split(comma)
	if err != nil || !reflect.DeepEqual(got, []string{`a;"b;c"`}) {
		t.Fatalf("split(,) = %q, %v", got, err)
	}
	if len(s.results) != 2 {
		t.Fatalf("cached %d results, want 2", len(s.results))
	}
	s.reset("x")
	if len(s.results) != 0 {
		t.Fatalf("reset kept %d results", len(s.results))
	}
}
