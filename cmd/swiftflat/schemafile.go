package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/oleg578/swiftflat/schema"
)

// schemaFile is the YAML form of a schema.
//
//	kind: csv
//	lineSeparator: lf
//	lines:
//	  - type: Person
//	    separator: ";"
//	    cells:
//	      - name: age
//	        type: integer
type schemaFile struct {
	Kind          string     `yaml:"kind"`
	LineSeparator string     `yaml:"lineSeparator"`
	Locale        string     `yaml:"locale"`
	Lines         []lineFile `yaml:"lines"`
}

type lineFile struct {
	Type           string     `yaml:"type"`
	Occurs         int        `yaml:"occurs"`
	IgnoreRead     bool       `yaml:"ignoreRead"`
	IgnoreWrite    bool       `yaml:"ignoreWrite"`
	PadChar        string     `yaml:"padChar"`
	Separator      string     `yaml:"separator"`
	Quote          string     `yaml:"quote"`
	HeaderAsSchema bool       `yaml:"headerAsSchema"`
	Cells          []cellFile `yaml:"cells"`
}

type cellFile struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Pattern     string   `yaml:"pattern"`
	Locale      string   `yaml:"locale"`
	Width       int      `yaml:"width"`
	Align       string   `yaml:"align"`
	PadChar     string   `yaml:"padChar"`
	NoTrim      bool     `yaml:"noTrim"`
	Default     *string  `yaml:"default"`
	Mandatory   bool     `yaml:"mandatory"`
	MaxLength   int      `yaml:"maxLength"`
	Equals      []string `yaml:"equals"`
	Match       string   `yaml:"match"`
	IgnoreRead  bool     `yaml:"ignoreRead"`
	IgnoreWrite bool     `yaml:"ignoreWrite"`
}

func loadSchemaFile(path string) (*schema.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema: %w", err)
	}
	defer f.Close()
	s, err := decodeSchema(f)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

func decodeSchema(r io.Reader) (*schema.Schema, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var sf schemaFile
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	s, err := sf.build()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (sf *schemaFile) build() (*schema.Schema, error) {
	s := &schema.Schema{Locale: sf.Locale}
	switch strings.ToLower(sf.Kind) {
	case "fixed-width", "fixedwidth", "fixed":
		s.Kind = schema.FixedWidth
	case "csv":
		s.Kind = schema.CSV
	default:
		return nil, fmt.Errorf("unknown schema kind %q (expected fixed-width or csv)", sf.Kind)
	}
	s.LineSeparator = lineSeparator(sf.LineSeparator)

	for _, lf := range sf.Lines {
		l := schema.Line{
			LineType:       lf.Type,
			Occurs:         lf.Occurs,
			IgnoreRead:     lf.IgnoreRead,
			IgnoreWrite:    lf.IgnoreWrite,
			Separator:      lf.Separator,
			HeaderAsSchema: lf.HeaderAsSchema,
		}
		var err error
		if l.PadChar, err = singleRune("padChar", lf.PadChar); err != nil {
			return nil, fmt.Errorf("line '%s': %w", lf.Type, err)
		}
		if l.Quote, err = singleRune("quote", lf.Quote); err != nil {
			return nil, fmt.Errorf("line '%s': %w", lf.Type, err)
		}
		for _, cf := range lf.Cells {
			c, err := cf.build()
			if err != nil {
				return nil, fmt.Errorf("line '%s' cell '%s': %w", lf.Type, cf.Name, err)
			}
			l.Cells = append(l.Cells, c)
		}
		s.Lines = append(s.Lines, l)
	}
	return s, nil
}

func (cf *cellFile) build() (schema.Cell, error) {
	typ, ok := schema.ParseCellType(strings.ToLower(cf.Type))
	if !ok {
		return schema.Cell{}, fmt.Errorf("unknown type %q", cf.Type)
	}
	c := schema.Cell{
		Name:        cf.Name,
		Format:      schema.Format{Type: typ, Pattern: cf.Pattern, Locale: cf.Locale},
		Width:       cf.Width,
		NoTrim:      cf.NoTrim,
		Default:     cf.Default,
		Mandatory:   cf.Mandatory,
		MaxLength:   cf.MaxLength,
		IgnoreRead:  cf.IgnoreRead,
		IgnoreWrite: cf.IgnoreWrite,
	}
	switch strings.ToLower(cf.Align) {
	case "", "left":
		c.Alignment = schema.Left
	case "right":
		c.Alignment = schema.Right
	case "center", "centre":
		c.Alignment = schema.Center
	default:
		return schema.Cell{}, fmt.Errorf("unknown alignment %q", cf.Align)
	}
	var err error
	if c.PadChar, err = singleRune("padChar", cf.PadChar); err != nil {
		return schema.Cell{}, err
	}

	switch {
	case cf.Match != "" && len(cf.Equals) > 0:
		return schema.Cell{}, fmt.Errorf("match and equals are exclusive")
	case cf.Match != "":
		if c.Condition, err = schema.Matches(cf.Match); err != nil {
			return schema.Cell{}, fmt.Errorf("match: %w", err)
		}
	case len(cf.Equals) > 0:
		c.Condition = schema.Equals(cf.Equals...)
	}
	return c, nil
}

// lineSeparator accepts the names lf, crlf and none besides literal separators.
func lineSeparator(name string) string {
	switch strings.ToLower(name) {
	case "lf":
		return schema.LF
	case "crlf":
		return schema.CRLF
	case "none":
		return schema.NoSeparator
	}
	return name
}

func singleRune(field, s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("%s %q must be a single character", field, s)
	}
	return r, nil
}
