package swiftflat

import (
	"errors"
	"io"

	"github.com/tliron/commonlog"

	"github.com/oleg578/swiftflat/model"
	"github.com/oleg578/swiftflat/schema"
	"github.com/oleg578/swiftflat/textfmt"
)

// Reader parses records from a flat file described by a schema.
//
// The exported fields are read on the first call to Read and must not change afterwards.
type Reader struct {
	src      io.Reader
	schema   *schema.Schema
	capacity int

	// OnInsufficient applies to lines that end before all of their cells were read.
	// Default is Ignore.
	OnInsufficient Policy
	// OnOverflow applies to CSV lines with more fields than their definition. Default is
	// Ignore, which keeps the fields as text cells named "@extra<position>".
	OnOverflow Policy
	// OnUndefinedLine applies to input lines that no line definition matches. The line is
	// skipped unless the policy is Abort. Default is Warn.
	OnUndefinedLine Policy
	// ErrorHandler receives recoverable errors. Default is FailFast.
	ErrorHandler ErrorHandler
	// MaxCellCacheSize caps the number of parsed values remembered per cell.
	MaxCellCacheSize int

	log      commonlog.Logger
	w        *window
	matchers []*lineMatcher
	fixed    []*fixedAssembler
	csv      []*csvAssembler
	splitter fieldSplitter
	formats  *textfmt.FormatCache
	allocate int

	lineType    string
	initialized bool
	err         error
}

// NewReader returns a Reader for s that consumes r, panicking if r or s is nil. Lines may
// hold up to DefaultCapacity characters.
func NewReader(r io.Reader, s *schema.Schema) *Reader {
	return NewReaderSize(r, s, DefaultCapacity)
}

// NewReaderSize is NewReader with lines of up to capacity characters. Longer lines fail
// with ErrStreamCapacity.
func NewReaderSize(r io.Reader, s *schema.Schema, capacity int) *Reader {
	if r == nil {
		panic("swiftflat: reader source cannot be nil")
	}
	if s == nil {
		panic("swiftflat: schema cannot be nil")
	}
	return &Reader{
		src:              r,
		schema:           s,
		capacity:         capacity,
		OnInsufficient:   Ignore,
		OnOverflow:       Ignore,
		OnUndefinedLine:  Warn,
		ErrorHandler:     FailFast,
		MaxCellCacheSize: DefaultCellCacheSize,
		log:              commonlog.GetLogger("swiftflat"),
	}
}

func (r *Reader) init() error {
	r.initialized = true
	if err := r.schema.Validate(); err != nil {
		return err
	}
	r.formats = textfmt.NewFormatCache(textfmt.DefaultFormatCacheSize)

	sep := r.schema.LineSeparator
	capacity := r.capacity
	switch r.schema.Kind {
	case schema.FixedWidth:
		r.allocate = r.schema.MaxLineWidth()
		if sep == schema.NoSeparator {
			capacity = max(capacity, r.allocate)
		}
	case schema.CSV:
		if sep == schema.NoSeparator {
			sep = schema.LF
		}
	}
	r.w = newWindow(r.src, sep, capacity)

	build := func(l *schema.Line) ([]*converter, error) {
		return newConverters(l, r.schema.Locale, r.formats, r.MaxCellCacheSize)
	}
	for i := range r.schema.Lines {
		l := &r.schema.Lines[i]
		r.matchers = append(r.matchers, newLineMatcher(l))
		switch r.schema.Kind {
		case schema.FixedWidth:
			convs, err := build(l)
			if err != nil {
				return err
			}
			r.fixed = append(r.fixed, &fixedAssembler{line: l, convs: convs})
		case schema.CSV:
			a, err := newCSVAssembler(l, build)
			if err != nil {
				return err
			}
			r.csv = append(r.csv, a)
		}
	}
	r.log.Debugf("reading %v schema with %d line types, capacity %d", r.schema.Kind, len(r.schema.Lines), capacity)
	return nil
}

// Read returns the next record. It returns io.EOF once the input is exhausted. Errors end
// parsing and are returned again by every later call.
func (r *Reader) Read() (*model.Record, error) {
	if r == nil || r.src == nil {
		return nil, io.EOF
	}
	if r.err != nil {
		return nil, r.err
	}
	if !r.initialized {
		if err := r.init(); err != nil {
			r.err = err
			return nil, err
		}
	}
	for {
		var rec *model.Record
		var err error
		if r.schema.Kind == schema.FixedWidth {
			rec, err = r.nextFixed()
		} else {
			rec, err = r.nextCSV()
		}
		if err != nil {
			r.err = err
			return nil, err
		}
		if rec != nil {
			rec.LineNumber = r.w.line
			return rec, nil
		}
	}
}

// ReadAll exhausts the reader, returning every record and the first error other than io.EOF.
func (r *Reader) ReadAll() (records []*model.Record, err error) {
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// Parse reads every record and hands it to h. It stops at the first error that h returns.
func (r *Reader) Parse(h LineHandler) error {
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := h.HandleLine(rec); err != nil {
			return err
		}
	}
}

// Parse reads src according to s with default settings and hands every record to h.
func Parse(src io.Reader, s *schema.Schema, h LineHandler) error {
	return NewReader(src, s).Parse(h)
}

// Line returns the number of the last line read.
func (r *Reader) Line() int64 {
	if r.w == nil {
		return 0
	}
	return r.w.line
}

// nextFixed parses one fixed-width line. It returns nil without error for lines that
// produce no record.
func (r *Reader) nextFixed() (*model.Record, error) {
	n, err := r.w.nextLine(r.allocate)
	if err != nil {
		return nil, r.streamError(err)
	}
	if n < 0 {
		return nil, io.EOF
	}
	r.lineType = ""
	if n == 0 && r.w.separated() {
		return nil, nil
	}

	i, err := selectFixed(r.matchers, r.w)
	if err != nil {
		return nil, r.streamError(err)
	}
	if i < 0 {
		if !r.w.separated() {
			// the start of the next record is unknown
			return nil, &LineError{Line: r.w.line, Err: ErrNoMatchingLine}
		}
		_, err := r.lineProblem(ErrNoMatchingLine)
		return nil, err
	}

	a := r.fixed[i]
	r.lineType = a.line.LineType
	if a.line.IgnoreRead {
		if !r.w.separated() {
			if _, err := r.w.skip(a.line.Width()); err != nil {
				return nil, r.streamError(err)
			}
		}
		return nil, nil
	}
	rec, err := a.assemble(r.w, r)
	if err != nil {
		return nil, r.streamError(err)
	}
	return rec, nil
}

// nextCSV parses one CSV line. It returns nil without error for lines that produce no record.
func (r *Reader) nextCSV() (*model.Record, error) {
	n, err := r.w.nextLine(0)
	if err != nil {
		return nil, r.streamError(err)
	}
	if n < 0 {
		return nil, io.EOF
	}
	r.lineType = ""
	if n == 0 {
		return nil, nil
	}
	r.splitter.reset(r.w.lineText())

	i, fields, splitErr := r.selectCSV()
	if i < 0 {
		if splitErr != nil {
			return nil, r.report(&LineError{Line: r.w.line, Err: splitErr})
		}
		_, err := r.lineProblem(ErrNoMatchingLine)
		return nil, err
	}

	a := r.csv[i]
	r.lineType = a.line.LineType
	if splitErr != nil {
		if !a.pendingHeader {
			r.matchers[i].consume()
		}
		return nil, r.report(&LineError{Line: r.w.line, LineType: r.lineType, Err: splitErr})
	}
	if a.pendingHeader {
		r.log.Debugf("line %d: header of line type '%s' has %d columns", r.w.line, r.lineType, len(fields))
		err := a.useHeader(fields, r)
		if !a.pendingHeader {
			r.matchers[i].rebind(a.line)
		}
		return nil, err
	}
	r.matchers[i].consume()
	if a.line.IgnoreRead {
		return nil, nil
	}
	return a.assemble(fields, r)
}

// selectCSV returns the index of the first line definition with budget left whose control
// cells hold, with the fields of the line split its way. A definition still waiting for its
// header line takes the line without testing control cells. The index is -1 when nothing
// matches; splitErr is then the first quote error met, if any.
func (r *Reader) selectCSV() (idx int, fields []string, splitErr error) {
	var firstErr error
	for i, m := range r.matchers {
		if m.exhausted() {
			continue
		}
		split, err := r.splitter.split(m.line)
		pending := r.csv[i].pendingHeader
		switch {
		case err != nil && (pending || len(m.controls) == 0):
			return i, nil, err
		case err != nil:
			if firstErr == nil {
				firstErr = err
			}
		case pending || m.matchFields(split):
			return i, split, nil
		}
	}
	return -1, nil, firstErr
}

// streamError locates capacity errors on the line being read. I/O errors pass unchanged.
func (r *Reader) streamError(err error) error {
	if errors.Is(err, ErrStreamCapacity) {
		var le *LineError
		if errors.As(err, &le) {
			return err
		}
		return &LineError{Line: r.w.line + 1, LineType: r.lineType, Err: err}
	}
	return err
}

func (r *Reader) report(err error) error {
	h := r.ErrorHandler
	if h == nil {
		h = FailFast
	}
	return h.HandleError(err)
}

func (r *Reader) cellProblem(c *schema.Cell, text string, err error) error {
	return r.report(&CellError{Line: r.w.line, LineType: r.lineType, Cell: c.Name, Value: text, Err: err})
}

func (r *Reader) lineProblem(err error) (bool, error) {
	p := r.OnInsufficient
	switch {
	case errors.Is(err, ErrLineOverflow):
		p = r.OnOverflow
	case errors.Is(err, ErrNoMatchingLine):
		p = r.OnUndefinedLine
	}
	le := &LineError{Line: r.w.line, LineType: r.lineType, Err: err}
	switch p {
	case Ignore:
		return false, nil
	case Abort:
		return true, le
	}
	r.log.Warningf("%s", le)
	if err := r.report(le); err != nil {
		return true, err
	}
	return p == OmitLine, nil
}
