package swiftflat

import (
	"errors"
	"strconv"
	"sync"

	"github.com/oleg578/swiftflat/model"
)

// Policy decides what happens when a line does not have the shape its definition expects.
type Policy uint8

const (
	// Ignore continues silently.
	Ignore Policy = iota
	// Warn logs the problem, reports it to the ErrorHandler and keeps the line.
	Warn
	// OmitLine logs the problem, reports it to the ErrorHandler and drops the line.
	OmitLine
	// Abort ends parsing with the problem as error.
	Abort
)

func (p Policy) String() string {
	switch p {
	case Ignore:
		return "ignore"
	case Warn:
		return "warn"
	case OmitLine:
		return "omit"
	case Abort:
		return "abort"
	}
	return "policy(" + strconv.Itoa(int(p)) + ")"
}

// ParsePolicy maps a policy name to a Policy.
func ParsePolicy(name string) (Policy, bool) {
	switch name {
	case "ignore", "none":
		return Ignore, true
	case "warn", "warning":
		return Warn, true
	case "omit", "omit-line":
		return OmitLine, true
	case "abort", "fail":
		return Abort, true
	}
	return Ignore, false
}

// ErrorHandler receives recoverable parse and compose errors. They are *LineError or
// *CellError values. Returning a non-nil error ends parsing with that error.
type ErrorHandler interface {
	HandleError(err error) error
}

// ErrorHandlerFunc adapts a function to ErrorHandler.
type ErrorHandlerFunc func(err error) error

func (f ErrorHandlerFunc) HandleError(err error) error {
	return f(err)
}

// FailFast ends parsing at the first error. It is the default ErrorHandler.
var FailFast ErrorHandler = ErrorHandlerFunc(func(err error) error { return err })

// ErrorRecorder collects every error and lets parsing continue. It is safe for concurrent use.
type ErrorRecorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *ErrorRecorder) HandleError(err error) error {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
	return nil
}

// Errors returns the recorded errors in report order.
func (r *ErrorRecorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// Len returns the number of recorded errors.
func (r *ErrorRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

// Err joins the recorded errors, nil when none were recorded.
func (r *ErrorRecorder) Err() error {
	return errors.Join(r.Errors()...)
}

// LineHandler receives parsed records. The handler owns each record it is given.
type LineHandler interface {
	HandleLine(rec *model.Record) error
}

// LineHandlerFunc adapts a function to LineHandler.
type LineHandlerFunc func(rec *model.Record) error

func (f LineHandlerFunc) HandleLine(rec *model.Record) error {
	return f(rec)
}
