package textfmt

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/oleg578/swiftflat/model"
	"github.com/oleg578/swiftflat/schema"
)

// numberFormat handles integers, floats and decimals. The pattern follows the "#,##0.00"
// convention: a ',' turns on digit grouping when formatting and the number of characters
// after '.' fixes the fraction digits. Parsing accepts grouped and ungrouped text.
type numberFormat struct {
	typ       schema.CellType
	sym       Symbols
	grouped   bool
	precision int // -1 keeps all fraction digits
}

func newNumberFormat(typ schema.CellType, pattern string, sym Symbols) *numberFormat {
	f := &numberFormat{typ: typ, sym: sym, precision: -1}
	f.grouped = strings.ContainsRune(pattern, ',')
	if i := strings.IndexByte(pattern, '.'); i >= 0 {
		f.precision = len(pattern) - i - 1
	}
	if typ == schema.Integer {
		f.precision = -1
	}
	return f
}

func (f *numberFormat) Parse(text string) (model.Value, error) {
	s, ok := f.normalize(text)
	if !ok {
		return model.Value{}, syntaxError(text, f.typ)
	}
	switch f.typ {
	case schema.Integer:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return model.Value{}, syntaxError(text, f.typ)
		}
		return model.IntegerValue(i), nil
	case schema.Float:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Value{}, syntaxError(text, f.typ)
		}
		return model.FloatValue(v), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return model.Value{}, syntaxError(text, f.typ)
	}
	return model.DecimalValue(d), nil
}

// normalize strips group symbols and replaces the locale decimal symbol with '.'.
func (f *numberFormat) normalize(text string) (string, bool) {
	text = strings.TrimSpace(text)
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		switch {
		case r == f.sym.Decimal:
			sb.WriteByte('.')
		case f.sym.Group != 0 && r == f.sym.Group:
		case r == '.' || r == ',':
			// the other ASCII mark is only valid as this locale's symbol
			return "", false
		case unicode.IsSpace(r) && f.sym.Group != 0 && unicode.IsSpace(f.sym.Group):
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String(), sb.Len() > 0
}

func (f *numberFormat) Format(v model.Value) (string, error) {
	var s string
	switch v.Kind() {
	case model.Empty:
		return "", nil
	case model.Text:
		t, _ := v.Text()
		return t, nil
	case model.Integer:
		i, _ := v.Int()
		switch {
		case f.typ == schema.Integer || f.precision < 0:
			s = strconv.FormatInt(i, 10)
		default:
			s = decimal.NewFromInt(i).StringFixed(int32(f.precision))
		}
	case model.Float:
		x, _ := v.Float()
		if f.typ == schema.Integer {
			s = strconv.FormatInt(int64(x), 10)
		} else {
			s = strconv.FormatFloat(x, 'f', f.precision, 64)
		}
	case model.Decimal:
		d, _ := v.Decimal()
		switch {
		case f.typ == schema.Integer:
			s = d.Truncate(0).String()
		case f.precision >= 0:
			s = d.StringFixed(int32(f.precision))
		default:
			s = d.String()
		}
	default:
		return "", kindError(v, f.typ)
	}
	return localize(s, f.sym, f.grouped), nil
}

// localize rewrites a plain "-1234.5" number in the given symbols.
func localize(s string, sym Symbols, grouped bool) string {
	if sym.Decimal == '.' && (!grouped || sym.Group == 0) {
		return s
	}
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var sb strings.Builder
	sb.WriteString(sign)
	if grouped && sym.Group != 0 {
		for i, r := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				sb.WriteRune(sym.Group)
			}
			sb.WriteRune(r)
		}
	} else {
		sb.WriteString(intPart)
	}
	if hasFrac {
		sb.WriteRune(sym.Decimal)
		sb.WriteString(frac)
	}
	return sb.String()
}

// impliedDecimalFormat reads numbers without a decimal point whose last places digits are
// the fraction.
type impliedDecimalFormat struct {
	places int32
}

func newImpliedDecimalFormat(pattern string) (*impliedDecimalFormat, error) {
	if pattern == "" {
		return &impliedDecimalFormat{}, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(pattern))
	if err != nil || n < 0 {
		return nil, ErrPattern
	}
	return &impliedDecimalFormat{places: int32(n)}, nil
}

func (f *impliedDecimalFormat) Parse(text string) (model.Value, error) {
	s := strings.TrimSpace(text)
	digits := strings.TrimLeft(s, "+-")
	if len(s)-len(digits) > 1 || digits == "" {
		return model.Value{}, syntaxError(text, schema.ImpliedDecimal)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return model.Value{}, syntaxError(text, schema.ImpliedDecimal)
		}
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return model.Value{}, syntaxError(text, schema.ImpliedDecimal)
	}
	return model.DecimalValue(d.Shift(-f.places)), nil
}

func (f *impliedDecimalFormat) Format(v model.Value) (string, error) {
	var d decimal.Decimal
	switch v.Kind() {
	case model.Empty:
		return "", nil
	case model.Text:
		t, _ := v.Text()
		return t, nil
	case model.Decimal:
		d, _ = v.Decimal()
	case model.Integer:
		i, _ := v.Int()
		d = decimal.NewFromInt(i)
	case model.Float:
		x, _ := v.Float()
		d = decimal.NewFromFloat(x)
	default:
		return "", kindError(v, schema.ImpliedDecimal)
	}
	return d.Shift(f.places).StringFixed(0), nil
}
