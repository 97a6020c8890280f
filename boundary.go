package swiftflat

import (
	"github.com/oleg578/swiftflat/schema"
)

// lineScanner finds where lines start and end.
type lineScanner interface {
	// nextLine positions w on the next line with the cursor at its start and returns its
	// length, -1 at end of stream.
	nextLine(w *window, allocate int) (int, error)
	// slack is the buffer room needed beyond the line capacity to hold a terminator.
	slack() int
}

func newLineScanner(separator string) lineScanner {
	switch separator {
	case schema.NoSeparator:
		return flatScanner{}
	case schema.LF, schema.CRLF:
		return crlfScanner{}
	}
	return customScanner{sep: []rune(separator)}
}

// flatScanner serves records that follow each other without separator. A line starts
// wherever the previous one stopped reading.
type flatScanner struct{}

func (flatScanner) slack() int { return 1 }

func (flatScanner) nextLine(w *window, allocate int) (int, error) {
	w.mark = w.cursor
	w.next = w.cursor
	w.lineEnd = noLineEnd
	allocate = max(allocate, 1)
	if err := w.fill(w.cursor + allocate - w.size); err != nil {
		return 0, err
	}
	if w.size == w.mark {
		return -1, nil
	}
	return min(w.size-w.mark, allocate), nil
}

// crlfScanner ends lines at "\n" and drops a "\r" right before it.
type crlfScanner struct{}

func (crlfScanner) slack() int { return 2 }

func (crlfScanner) nextLine(w *window, _ int) (int, error) {
	w.cursor, w.mark = w.next, w.next
	for {
		if w.cursor >= w.size {
			n, err := w.load(1)
			if err != nil {
				return 0, err
			}
			if n == 0 {
				return w.endOfStream()
			}
		}
		if w.buf[w.cursor] == '\n' {
			end := w.cursor
			if end > w.mark && w.buf[end-1] == '\r' {
				end--
			}
			return w.endLine(end, w.cursor+1)
		}
		w.cursor++
	}
}

// customScanner ends lines at an arbitrary separator. The separator is matched backwards
// from its last character, so one split across two loads is still found.
type customScanner struct {
	sep []rune
}

func (s customScanner) slack() int { return len(s.sep) }

func (s customScanner) nextLine(w *window, _ int) (int, error) {
	w.cursor, w.mark = w.next, w.next
	last := s.sep[len(s.sep)-1]
	for {
		if w.cursor >= w.size {
			n, err := w.load(1)
			if err != nil {
				return 0, err
			}
			if n == 0 {
				return w.endOfStream()
			}
		}
		c := w.buf[w.cursor]
		w.cursor++
		if c == last && s.endsAt(w, w.cursor) {
			return w.endLine(w.cursor-len(s.sep), w.cursor)
		}
	}
}

func (s customScanner) endsAt(w *window, pos int) bool {
	start := pos - len(s.sep)
	if start < w.mark {
		return false
	}
	for i := len(s.sep) - 2; i >= 0; i-- {
		if w.buf[start+i] != s.sep[i] {
			return false
		}
	}
	return true
}
