package textfmt

import (
	"fmt"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Symbols are the locale specific characters of formatted numbers.
type Symbols struct {
	Decimal rune
	// Group is zero when the locale does not group digits.
	Group rune
}

// DefaultSymbols are used when no locale is given.
var DefaultSymbols = Symbols{Decimal: '.', Group: ','}

// LocaleSymbols derives the decimal and grouping symbols of a BCP 47 locale tag by
// formatting a sample number with the locale's CLDR rules.
func LocaleSymbols(tag string) (Symbols, error) {
	if tag == "" {
		return DefaultSymbols, nil
	}
	lang, err := language.Parse(tag)
	if err != nil {
		return Symbols{}, fmt.Errorf("textfmt: locale %q: %w", tag, err)
	}
	sample := message.NewPrinter(lang).Sprintf("%v", number.Decimal(1234.5))

	var marks []rune
	for _, r := range sample {
		if !unicode.IsDigit(r) {
			marks = append(marks, r)
		}
	}
	switch len(marks) {
	case 0:
		return DefaultSymbols, nil
	case 1:
		return Symbols{Decimal: marks[0]}, nil
	}
	return Symbols{Decimal: marks[len(marks)-1], Group: marks[0]}, nil
}
