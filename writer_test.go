package swiftflat

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jf-tech/go-corelib/strs"
	"github.com/shopspring/decimal"

	"github.com/oleg578/swiftflat/model"
	"github.com/oleg578/swiftflat/schema"
)

func newRecord(lineType string, cells ...model.Cell) *model.Record {
	rec := model.NewRecord(lineType, len(cells))
	for _, c := range cells {
		rec.Add(c.Name, c.Value)
	}
	return rec
}

func text(name, v string) model.Cell { return model.Cell{Name: name, Value: model.TextValue(v)} }

func integer(name string, v int64) model.Cell {
	return model.Cell{Name: name, Value: model.IntegerValue(v)}
}

func writeString(t *testing.T, w *Writer, buf *bytes.Buffer, records ...*model.Record) string {
	t.Helper()
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	return buf.String()
}

func amountSchema() *schema.Schema {
	return schema.NewCSV(schema.LF, schema.Line{LineType: "R", Quote: '"', Cells: []schema.Cell{
		{Name: "name"},
		{Name: "amount", Format: schema.Format{Type: schema.Decimal, Pattern: "0.00"}},
	}})
}

func TestWriterCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records []*model.Record
		config  func(*Writer)
		want    string
	}{
		{
			name: "basic",
			records: []*model.Record{
				newRecord("R", text("name", "Ann"), model.Cell{Name: "amount", Value: model.DecimalValue(decimal.RequireFromString("12.5"))}),
				newRecord("R", text("name", "Bob"), integer("amount", 1)),
			},
			want: "Ann,12.50\nBob,1.00\n",
		},
		{
			name:    "separatorForcesQuote",
			records: []*model.Record{newRecord("R", text("name", "a,b"))},
			want:    "\"a,b\",\n",
		},
		{
			name:    "alwaysQuote",
			records: []*model.Record{newRecord("R", text("name", "Ann"), integer("amount", 3))},
			config:  func(w *Writer) { w.AlwaysQuote = true },
			want:    "\"Ann\",\"3.00\"\n",
		},
		{
			name:    "lineTerminator",
			records: []*model.Record{newRecord("R", text("name", "x")), newRecord("R", text("name", "y"))},
			config:  func(w *Writer) { w.LineTerminator = "\r\n" },
			want:    "x,\r\ny,\r\n",
		},
		{
			name:    "textValueWrittenAsIs",
			records: []*model.Record{newRecord("R", text("name", "n"), text("amount", "n/a"))},
			want:    "n,n/a\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			w := NewWriter(&buf, amountSchema())
			if tc.config != nil {
				tc.config(w)
			}
			if got := writeString(t, w, &buf, tc.records...); got != tc.want {
				t.Fatalf("output = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestWriterCSVUnencodable(t *testing.T) {
	t.Parallel()

	t.Run("failFast", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewWriter(&buf, amountSchema())
		err := w.Write(newRecord("R", text("name", `say "hi"`)))
		var ce *CellError
		if !errors.As(err, &ce) || ce.Cell != "name" || !errors.Is(err, ErrUnencodable) {
			t.Fatalf("Write() error = %v, want unencodable name cell", err)
		}
		if !errors.Is(w.Error(), ErrUnencodable) {
			t.Fatalf("Error() = %v, want the write error", w.Error())
		}
	})

	t.Run("recorded", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		rec := &ErrorRecorder{}
		w := NewWriter(&buf, amountSchema())
		w.ErrorHandler = rec
		got := writeString(t, w, &buf,
			newRecord("R", text("name", "two\nlines"), integer("amount", 2)),
			newRecord("R", text("name", "ok"), text("amount", "12.00")),
		)
		if want := ",2.00\nok,12.00\n"; got != want {
			t.Fatalf("output = %q, want %q", got, want)
		}
		if rec.Len() != 1 || !errors.Is(rec.Err(), ErrUnencodable) {
			t.Fatalf("recorded = %v", rec.Errors())
		}
	})

	t.Run("separatorWithoutQuote", func(t *testing.T) {
		t.Parallel()
		s := schema.NewCSV(schema.LF, schema.Line{LineType: "R", Separator: ";", Cells: []schema.Cell{{Name: "v"}}})
		w := NewWriter(&bytes.Buffer{}, s)
		if err := w.Write(newRecord("R", text("v", "a;b"))); !errors.Is(err, ErrUnencodable) {
			t.Fatalf("Write() error = %v, want ErrUnencodable", err)
		}
	})
}

func TestWriterCSVHeader(t *testing.T) {
	t.Parallel()

	s := schema.NewCSV(schema.LF, schema.Line{LineType: "Person", HeaderAsSchema: true, Cells: []schema.Cell{
		{Name: "name"},
		{Name: "age", Format: schema.Format{Type: schema.Integer}},
		{Name: "country", Default: strs.StrPtr("SE")},
	}})
	var buf bytes.Buffer
	w := NewWriter(&buf, s)
	got := writeString(t, w, &buf,
		newRecord("Person", text("name", "Ann"), integer("age", 30)),
		newRecord("Person", text("name", "Bob"), integer("age", 41), text("country", "NO")),
	)
	if want := "name,age,country\nAnn,30,SE\nBob,41,NO\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}

	var again bytes.Buffer
	w.Reset(&again)
	if got := writeString(t, w, &again, newRecord("Person", text("name", "Cid"))); got != "name,age,country\nCid,,SE\n" {
		t.Fatalf("output after Reset = %q", got)
	}
}

func TestWriterCSVPositionalCells(t *testing.T) {
	t.Parallel()

	s := schema.NewCSV(schema.LF, schema.Line{LineType: "R", Cells: []schema.Cell{{}, {Name: "b"}, {}}})
	rec := model.NewRecord("R", 3)
	rec.Add("", model.TextValue("first"))
	rec.Add("b", model.TextValue("second"))
	rec.Add("", model.TextValue("third"))

	var buf bytes.Buffer
	if got := writeString(t, NewWriter(&buf, s), &buf, rec); got != "first,second,third\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestWriterFixedWidth(t *testing.T) {
	t.Parallel()

	s := schema.NewFixedWidth(schema.LF,
		schema.Line{LineType: "Comment", IgnoreWrite: true, Cells: []schema.Cell{{Name: "c", Width: 3}}},
		schema.Line{LineType: "D", Cells: []schema.Cell{
			{Name: "code", Width: 4},
			{Name: "qty", Width: 6, Alignment: schema.Right, PadChar: '0', Format: schema.Format{Type: schema.Integer}},
			{Name: "note", Width: 5, Alignment: schema.Center, PadChar: '*'},
			{Name: "filler", Width: 2, IgnoreWrite: true},
			{Name: "ref", Width: 3, Alignment: schema.Right},
		}},
	)
	var buf bytes.Buffer
	got := writeString(t, NewWriter(&buf, s), &buf,
		newRecord("D", text("code", "AB"), integer("qty", -42), text("note", "x"), text("filler", "zz"), text("ref", "1")),
		newRecord("Comment", text("c", "abc")),
		newRecord("D", text("code", "ABCDEF"), integer("qty", 7), text("ref", "12345")),
	)
	want := "AB  -00042**x**    1\n" +
		"ABCD000007*****  345\n"
	if got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestWriterTerminatorDefaults(t *testing.T) {
	t.Parallel()

	fixed := schema.NewFixedWidth(schema.NoSeparator, schema.Line{LineType: "R", Cells: []schema.Cell{{Name: "v", Width: 2}}})
	var buf bytes.Buffer
	if got := writeString(t, NewWriter(&buf, fixed), &buf, newRecord("R", text("v", "a")), newRecord("R", text("v", "b"))); got != "a b " {
		t.Fatalf("fixed output = %q, want %q", got, "a b ")
	}

	csv := schema.NewCSV(schema.NoSeparator, schema.Line{LineType: "R", Cells: []schema.Cell{{Name: "v"}}})
	var out bytes.Buffer
	if got := writeString(t, NewWriter(&out, csv), &out, newRecord("R", text("v", "a"))); got != "a"+platformNewline() {
		t.Fatalf("csv output = %q", got)
	}
}

func TestWriterUnknownLineType(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf, amountSchema())
	unknown := newRecord("Zed", text("name", "x"))
	unknown.LineNumber = 7
	err := w.Write(unknown)
	var le *LineError
	if !errors.As(err, &le) || le.Line != 7 || !errors.Is(err, ErrUnknownLineType) {
		t.Fatalf("Write() error = %v, want unknown line type on line 7", err)
	}
	if got := writeString(t, w, &buf, newRecord("R", text("name", "y"))); got != "y,\n" {
		t.Fatalf("output after unknown line type = %q", got)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	t.Parallel()

	input := "H20240131\nPAnn  Smith030\nPBob  Jones007\nF  2\n"
	s := personFixedSchema(schema.LF)
	var buf bytes.Buffer
	w := NewWriter(&buf, s)
	if err := Parse(strings.NewReader(input), s, w); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := buf.String(); got != input {
		t.Fatalf("round trip = %q, want %q", got, input)
	}
}

func TestWriterFailedRecordKeepsEarlierLines(t *testing.T) {
	t.Parallel()

	s := schema.NewCSV(schema.LF, schema.Line{LineType: "R", HeaderAsSchema: true, Cells: []schema.Cell{
		{Name: "name"},
		{Name: "note"},
	}})
	var buf bytes.Buffer
	w := NewWriter(&buf, s)
	if err := w.Write(newRecord("R", text("name", "ok"), text("note", "fine"))); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	err := w.Write(newRecord("R", text("name", "bad"), text("note", "two\nlines")))
	if !errors.Is(err, ErrUnencodable) {
		t.Fatalf("Write() error = %v, want ErrUnencodable", err)
	}
	if err := w.Flush(); !errors.Is(err, ErrUnencodable) {
		t.Fatalf("Flush() error = %v, want the write error", err)
	}
	if want := "name,note\nok,fine\n"; buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
	if err := w.Write(newRecord("R", text("name", "late"))); !errors.Is(err, ErrUnencodable) {
		t.Fatalf("Write() after failure = %v, want the sticky error", err)
	}
}

func TestWriterInvalidSchemaIsSticky(t *testing.T) {
	t.Parallel()

	w := NewWriter(&bytes.Buffer{}, schema.NewCSV(schema.LF))
	first := w.Write(newRecord("R"))
	if !errors.Is(first, schema.ErrInvalidSchema) {
		t.Fatalf("Write() error = %v, want ErrInvalidSchema", first)
	}
	if err := w.Flush(); err != first {
		t.Fatalf("Flush() error = %v, want %v", err, first)
	}
}

func TestWriterNil(t *testing.T) {
	t.Parallel()

	var w *Writer
	if err := w.Write(newRecord("R")); !errors.Is(err, errNilWriter) {
		t.Fatalf("Write() error = %v, want errNilWriter", err)
	}
	if err := w.Flush(); !errors.Is(err, errNilWriter) {
		t.Fatalf("Flush() error = %v, want errNilWriter", err)
	}
	if err := w.Error(); !errors.Is(err, errNilWriter) {
		t.Fatalf("Error() = %v, want errNilWriter", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("NewWriter(nil) should panic")
		}
	}()
	NewWriter(nil, amountSchema())
}
