package schema

import (
	"regexp"

	"github.com/jf-tech/go-corelib/caches"
)

// Condition decides whether the text of a control cell selects its line.
type Condition interface {
	Satisfies(text string) bool
}

// OneOf is satisfied by any of its literal values.
type OneOf []string

func (o OneOf) Satisfies(text string) bool {
	for _, v := range o {
		if v == text {
			return true
		}
	}
	return false
}

// Equals returns a condition that matches any of values exactly.
func Equals(values ...string) Condition {
	return OneOf(values)
}

type regexpCondition struct {
	re *regexp.Regexp
}

func (c regexpCondition) Satisfies(text string) bool {
	return c.re.MatchString(text)
}

// Matches returns a condition satisfied when the regular expression matches the text.
// Compiled expressions are shared through the process wide regexp cache.
func Matches(expr string) (Condition, error) {
	re, err := caches.GetRegex(expr)
	if err != nil {
		return nil, err
	}
	return regexpCondition{re: re}, nil
}
