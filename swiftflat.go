// # SwiftFlat: Schema Driven Flat File Parsing and Composing for Go
//
// SwiftFlat converts between fixed-width or CSV text and typed records. A schema (package
// schema) declares the record shapes a stream may contain: their cells, widths or
// separators, types and formats, defaults, and the control cells that tell one shape from
// another. Parsing streams the input through a bounded buffer, so memory use depends on the
// longest line and not on the size of the input.
//
// # Features
//
//   - Streaming Reader with pull (Read, ReadAll) and push (Parse) APIs.
//   - Fixed-width lines with or without line separators, pad trimming by alignment, and
//     several record shapes per file selected by occurrence counts and control cells.
//   - CSV lines with custom separators, optional quoting, and column sets taken from a
//     header line.
//   - Typed cells: text, integer, float, decimal, implied decimal, boolean and date, with
//     locale aware number symbols.
//   - Policies for short, overlong and unknown lines, and pluggable error handlers (FailFast,
//     ErrorRecorder).
//   - Writer composing records back into either format.
//   - A bounded producer/consumer hand-off in package pipeline and an Apache Arrow sink in
//     package columnar.
//
// # Errors
//
// Problems are reported as *LineError or *CellError values wrapping one of the sentinel
// errors (ErrFormatSyntax, ErrQuoteSyntax, ErrMandatoryMissing, ErrLineShape, ErrMaxLength,
// ErrNoMatchingLine). They go to the Reader's ErrorHandler; parsing continues when it
// returns nil. ErrStreamCapacity and I/O errors always end parsing.
package swiftflat
