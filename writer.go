package swiftflat

import (
	"bufio"
	"errors"
	"io"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/oleg578/swiftflat/model"
	"github.com/oleg578/swiftflat/schema"
	"github.com/oleg578/swiftflat/textfmt"
)

const defaultBufferSize = 1 << 12

var (
	errNilWriter      = errors.New("swiftflat: writer is nil")
	errWriterNoTarget = errors.New("swiftflat: writer destination cannot be nil")

	// ErrUnencodable is reported when cell text would break the line it is written to: a CSV
	// field holding the quote character, a line break, or the separator without quoting.
	ErrUnencodable = errors.New("swiftflat: text cannot be written to the line")
)

// Writer composes records into flat file lines described by a schema.
//
// The exported fields are read on the first call to Write and must not change afterwards.
type Writer struct {
	dst    *bufio.Writer
	schema *schema.Schema

	// LineTerminator ends every line. Default is the schema line separator; without one, CSV
	// lines end with the platform newline and fixed-width records follow each other directly.
	LineTerminator string
	// AlwaysQuote quotes every CSV field of lines that declare a quote character.
	AlwaysQuote bool
	// ErrorHandler receives cell errors. When it returns nil the cell is written empty.
	// Default is FailFast.
	ErrorHandler ErrorHandler

	formats     *textfmt.FormatCache
	convs       map[*schema.Line][]*converter
	headers     map[*schema.Line]bool
	terminator  string
	initialized bool
	line        strings.Builder

	err      error
	ioFailed bool
}

// NewWriter creates a Writer that composes lines of s to w, panicking if w or s is nil.
func NewWriter(w io.Writer, s *schema.Schema) *Writer {
	if w == nil {
		panic(errWriterNoTarget.Error())
	}
	if s == nil {
		panic("swiftflat: schema cannot be nil")
	}
	return &Writer{
		dst:          bufio.NewWriterSize(w, defaultBufferSize),
		schema:       s,
		ErrorHandler: FailFast,
	}
}

// Reset updates the underlying writer while preserving the configuration. Header lines are
// written again.
func (w *Writer) Reset(dst io.Writer) {
	if w == nil {
		panic(errNilWriter.Error())
	}
	if dst == nil {
		panic(errWriterNoTarget.Error())
	}
	if w.dst == nil {
		w.dst = bufio.NewWriterSize(dst, defaultBufferSize)
	} else {
		w.dst.Reset(dst)
	}
	clear(w.headers)
	w.err = nil
	w.ioFailed = false
}

func (w *Writer) init() error {
	if err := w.schema.Validate(); err != nil {
		return err
	}
	w.formats = textfmt.NewFormatCache(textfmt.DefaultFormatCacheSize)
	w.convs = make(map[*schema.Line][]*converter, len(w.schema.Lines))
	w.headers = make(map[*schema.Line]bool)
	for i := range w.schema.Lines {
		l := &w.schema.Lines[i]
		convs, err := newConverters(l, w.schema.Locale, w.formats, 0)
		if err != nil {
			return err
		}
		w.convs[l] = convs
	}

	w.terminator = w.LineTerminator
	if w.terminator == "" {
		w.terminator = w.schema.LineSeparator
	}
	if w.terminator == "" && w.schema.Kind == schema.CSV {
		w.terminator = platformNewline()
	}
	w.initialized = true
	return nil
}

func platformNewline() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// Write composes one record as a line of the record's line type. Records of line types that
// are ignored on write are skipped.
func (w *Writer) Write(rec *model.Record) error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}
	if !w.initialized {
		if err := w.init(); err != nil {
			w.err = err
			return err
		}
	}

	l, ok := w.schema.LineByType(rec.LineType)
	if !ok {
		return &LineError{Line: rec.LineNumber, LineType: rec.LineType, Err: ErrUnknownLineType}
	}
	if l.IgnoreWrite {
		return nil
	}

	// a failed record leaves no partial line in dst
	w.line.Reset()
	header := w.schema.Kind == schema.CSV && l.HeaderAsSchema && !w.headers[l]
	var err error
	if w.schema.Kind == schema.FixedWidth {
		err = w.writeFixed(l, rec)
	} else {
		err = w.writeCSV(l, rec, header)
	}
	if err != nil {
		w.err = err
		return err
	}
	w.line.WriteString(w.terminator)
	if _, err := w.dst.WriteString(w.line.String()); err != nil {
		w.err, w.ioFailed = err, true
		return err
	}
	if header {
		w.headers[l] = true
	}
	return nil
}

// HandleLine writes rec, so that a Writer can consume the records of a Reader.
func (w *Writer) HandleLine(rec *model.Record) error {
	return w.Write(rec)
}

// WriteAll writes multiple records, stopping at the first error.
func (w *Writer) WriteAll(records []*model.Record) error {
	if w == nil {
		return errNilWriter
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the lines written so far to the underlying writer. After a record failed to
// compose, the complete lines before it are still flushed and the failure is returned.
func (w *Writer) Flush() error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.ioFailed {
		return w.err
	}
	if err := w.dst.Flush(); err != nil {
		w.err, w.ioFailed = err, true
		return err
	}
	return w.err
}

// Error reports the first error encountered by the writer.
func (w *Writer) Error() error {
	if w == nil {
		return errNilWriter
	}
	return w.err
}

// cellValue finds the value of the i-th cell of l in rec: by name, or by position when the
// cell has no name. Absent cells are Empty.
func cellValue(rec *model.Record, l *schema.Line, i int) model.Value {
	c := &l.Cells[i]
	if c.Name != "" {
		return rec.Value(c.Name)
	}
	if i < len(rec.Cells) && rec.Cells[i].Name == "" {
		return rec.Cells[i].Value
	}
	return model.EmptyValue()
}

// cellText formats the i-th cell. Failures go to the error handler; if it lets the write
// continue, the cell is written empty.
func (w *Writer) cellText(l *schema.Line, rec *model.Record, i int) (string, error) {
	c := &l.Cells[i]
	text, err := w.convs[l][i].format(cellValue(rec, l, i))
	if err == nil {
		err = w.checkText(l, text)
	}
	if err == nil {
		return text, nil
	}
	return "", w.cellProblem(l, rec, c, text, err)
}

func (w *Writer) checkText(l *schema.Line, text string) error {
	if w.schema.Kind != schema.CSV {
		return nil
	}
	if strings.ContainsAny(text, "\r\n") || (w.terminator != "" && strings.Contains(text, w.terminator)) {
		return ErrUnencodable
	}
	if l.Quote != 0 && strings.ContainsRune(text, l.Quote) {
		return ErrUnencodable
	}
	if l.Quote == 0 && strings.Contains(text, l.CellSeparator()) {
		return ErrUnencodable
	}
	return nil
}

func (w *Writer) cellProblem(l *schema.Line, rec *model.Record, c *schema.Cell, text string, err error) error {
	h := w.ErrorHandler
	if h == nil {
		h = FailFast
	}
	return h.HandleError(&CellError{Line: rec.LineNumber, LineType: l.LineType, Cell: c.Name, Value: text, Err: err})
}

func (w *Writer) writeCSV(l *schema.Line, rec *model.Record, header bool) error {
	sep := l.CellSeparator()
	if header {
		for i := range l.Cells {
			if i > 0 {
				w.line.WriteString(sep)
			}
			w.writeCSVField(l, l.Cells[i].Name)
		}
		w.line.WriteString(w.terminator)
	}

	for i := range l.Cells {
		if i > 0 {
			w.line.WriteString(sep)
		}
		if l.Cells[i].IgnoreWrite {
			continue
		}
		text, err := w.cellText(l, rec, i)
		if err != nil {
			return err
		}
		w.writeCSVField(l, text)
	}
	return nil
}

// writeCSVField quotes fields that hold the separator, or every field with AlwaysQuote.
func (w *Writer) writeCSVField(l *schema.Line, field string) {
	if l.Quote == 0 || !(w.AlwaysQuote || strings.Contains(field, l.CellSeparator())) {
		w.line.WriteString(field)
		return
	}
	w.line.WriteRune(l.Quote)
	w.line.WriteString(field)
	w.line.WriteRune(l.Quote)
}

func (w *Writer) writeFixed(l *schema.Line, rec *model.Record) error {
	for i := range l.Cells {
		c := &l.Cells[i]
		text := ""
		if !c.IgnoreWrite {
			var err error
			if text, err = w.cellText(l, rec, i); err != nil {
				return err
			}
		}
		w.line.WriteString(fit(text, c.Width, c.Pad(l), c.Alignment, c.Format.Type.IsNumber()))
	}
	return nil
}

// fit pads or cuts text to width characters. Text that is too long keeps its leading
// characters, or its trailing ones when right aligned. Negative numbers padded with '0'
// keep the sign first.
func fit(text string, width int, pad rune, align schema.Alignment, numeric bool) string {
	n := utf8.RuneCountInString(text)
	if n >= width {
		if n == width || align != schema.Right {
			return truncate(text, width)
		}
		r := []rune(text)
		return string(r[n-width:])
	}

	fill := width - n
	padding := strings.Repeat(string(pad), fill)
	switch align {
	case schema.Right:
		if numeric && pad == '0' && strings.HasPrefix(text, "-") {
			return "-" + padding + text[1:]
		}
		return padding + text
	case schema.Center:
		left := fill / 2
		return padding[:left*utf8.RuneLen(pad)] + text + padding[left*utf8.RuneLen(pad):]
	}
	return text + padding
}
