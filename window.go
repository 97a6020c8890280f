package swiftflat

import (
	"bufio"
	"io"
	"math"
)

const (
	// DefaultCapacity is the longest line, in characters, a Reader accepts by default.
	DefaultCapacity = 1 << 13
	loadChunk       = 1 << 10
	noLineEnd       = math.MaxInt
)

// window is a bounded rune buffer over the input stream. The region from the line mark to
// the end of the loaded data is kept in the buffer; everything before the mark may be
// dropped when more room is needed. The cursor can be moved back to the mark, which lets
// control cells be peeked without reading the source twice.
type window struct {
	src      *bufio.Reader
	scan     lineScanner
	buf      []rune
	capacity int

	size    int // runes loaded
	cursor  int
	mark    int
	lineEnd int // exclusive end of the current line, noLineEnd without separators
	next    int // start of the line after the current one
	eof     bool
	line    int64
}

func newWindow(r io.Reader, lineSeparator string, capacity int) *window {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, 4*loadChunk)
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	scan := newLineScanner(lineSeparator)
	return &window{
		src:      br,
		scan:     scan,
		buf:      make([]rune, capacity+scan.slack()),
		capacity: capacity,
		lineEnd:  noLineEnd,
	}
}

// separated reports whether lines end with a separator, so that the start of the next line
// is known whatever was consumed of the current one.
func (w *window) separated() bool {
	_, flat := w.scan.(flatScanner)
	return !flat
}

// load reads at least want runes unless the stream ends first, and more while the source
// has them buffered. It returns the number of runes read; zero with eof set at end of stream.
func (w *window) load(want int) (int, error) {
	if w.eof {
		return 0, nil
	}
	if len(w.buf)-w.size < want && w.mark > 0 {
		w.compact()
	}
	free := len(w.buf) - w.size
	if free == 0 {
		return 0, ErrStreamCapacity
	}
	limit := min(max(want, loadChunk), free)
	loaded := 0
	for loaded < limit {
		if loaded >= want && w.src.Buffered() == 0 {
			break
		}
		r, _, err := w.src.ReadRune()
		if err != nil {
			if err == io.EOF {
				w.eof = true
				break
			}
			return loaded, err
		}
		w.buf[w.size] = r
		w.size++
		loaded++
	}
	return loaded, nil
}

// compact moves the data from the mark to the start of the buffer.
func (w *window) compact() {
	m := w.mark
	copy(w.buf, w.buf[m:w.size])
	w.size -= m
	w.cursor -= m
	w.next -= m
	if w.lineEnd != noLineEnd {
		w.lineEnd -= m
	}
	w.mark = 0
}

// fill loads until need more runes are available or the stream ends.
func (w *window) fill(need int) error {
	for need > 0 && !w.eof {
		n, err := w.load(need)
		if err != nil {
			return err
		}
		need -= n
	}
	return nil
}

func (w *window) markLine() {
	w.mark = w.cursor
}

func (w *window) resetLine() {
	w.cursor = w.mark
}

// readField returns up to width characters at offset from the cursor and moves the cursor
// past them. The text is cut at the end of the line. ok is false when no character of the
// field lies within the line.
func (w *window) readField(offset, width int) (text string, ok bool, err error) {
	w.cursor += offset
	if width == 0 {
		return "", true, nil
	}
	if err := w.fill(min(w.cursor+width, w.lineEnd) - w.size); err != nil {
		return "", false, err
	}
	end := min(w.cursor+width, w.size, w.lineEnd)
	if end <= w.cursor {
		return "", false, nil
	}
	text = string(w.buf[w.cursor:end])
	w.cursor = end
	return text, true, nil
}

// skip moves the cursor up to n characters within the line and returns how many were skipped.
func (w *window) skip(n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	if err := w.fill(min(w.cursor+n, w.lineEnd) - w.size); err != nil {
		return 0, err
	}
	end := min(w.cursor+n, w.size, w.lineEnd)
	if end <= w.cursor {
		return 0, nil
	}
	skipped := end - w.cursor
	w.cursor = end
	return skipped, nil
}

// nextLine moves to the next line and returns its length, -1 at end of stream. allocate is
// the number of characters to make available when lines have no separator.
func (w *window) nextLine(allocate int) (int, error) {
	n, err := w.scan.nextLine(w, allocate)
	if err != nil {
		return 0, err
	}
	if n >= 0 {
		w.line++
	}
	return n, nil
}

// lineText returns the current line of a separated stream.
func (w *window) lineText() string {
	return string(w.buf[w.mark:w.lineEnd])
}

// endLine records that the current line ends at end and the next one starts at next, and
// rewinds the cursor to the start of the line.
func (w *window) endLine(end, next int) (int, error) {
	w.lineEnd, w.next = end, next
	w.cursor = w.mark
	length := end - w.mark
	if length > w.capacity {
		return 0, ErrStreamCapacity
	}
	return length, nil
}

// endOfStream ends the current line at the end of the loaded data. It returns -1 when the
// line is empty, which is the end of the stream.
func (w *window) endOfStream() (int, error) {
	if w.cursor == w.mark {
		w.lineEnd, w.next = w.cursor, w.cursor
		return -1, nil
	}
	return w.endLine(w.cursor, w.cursor)
}
