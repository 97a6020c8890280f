package swiftflat

import (
	"strings"
	"unicode/utf8"

	"github.com/oleg578/swiftflat/schema"
)

// splitLine splits one CSV line into raw fields. The separator is matched literally. With
// a quote character, a field that starts with it runs to the next quote and may contain the
// separator. Quotes cannot be escaped inside a quoted field.
func splitLine(line, sep string, quote rune) ([]string, error) {
	if quote == 0 || !strings.ContainsRune(line, quote) {
		return strings.Split(line, sep), nil
	}
	qlen := utf8.RuneLen(quote)
	fields := make([]string, 0, strings.Count(line, sep)+1)
	rest := line
	for {
		if r, _ := utf8.DecodeRuneInString(rest); rest != "" && r == quote {
			body := rest[qlen:]
			end := strings.IndexRune(body, quote)
			if end < 0 {
				return nil, ErrQuoteMissingEnd
			}
			fields = append(fields, body[:end])
			rest = body[end+qlen:]
			if rest == "" {
				return fields, nil
			}
			if !strings.HasPrefix(rest, sep) {
				return nil, ErrQuoteClose
			}
			rest = rest[len(sep):]
			continue
		}

		field, tail, found := strings.Cut(rest, sep)
		if strings.ContainsRune(field, quote) {
			return nil, ErrQuoteOpen
		}
		fields = append(fields, field)
		if !found {
			return fields, nil
		}
		rest = tail
	}
}

// fieldSplitter splits the current line once per distinct separator and quote setting.
type fieldSplitter struct {
	line    string
	results map[splitKey]splitResult
}

type splitKey struct {
	sep   string
	quote rune
}

type splitResult struct {
	fields []string
	err    error
}

func (s *fieldSplitter) reset(line string) {
	s.line = line
	clear(s.results)
}

func (s *fieldSplitter) split(l *schema.Line) ([]string, error) {
	k := splitKey{sep: l.CellSeparator(), quote: l.Quote}
	if res, ok := s.results[k]; ok {
		return res.fields, res.err
	}
	fields, err := splitLine(s.line, k.sep, k.quote)
	if s.results == nil {
		s.results = make(map[splitKey]splitResult, 1)
	}
	s.results[k] = splitResult{fields: fields, err: err}
	return fields, err
}
