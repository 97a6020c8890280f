package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// lookupEncoding resolves a WHATWG encoding name such as "utf-8", "latin1" or
// "windows-1252". The empty name means UTF-8 and returns nil.
func lookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}

func isStdio(path string) bool {
	return path == "" || path == "-"
}

// openInput opens path, decoding from encName to UTF-8. "-" reads stdin.
func openInput(path, encName string, stdin io.Reader) (io.Reader, func() error, error) {
	enc, err := lookupEncoding(encName)
	if err != nil {
		return nil, nil, err
	}
	src := stdin
	closer := func() error { return nil }
	if !isStdio(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open input: %w", err)
		}
		src, closer = f, f.Close
	}
	if enc == nil {
		return src, closer, nil
	}
	return enc.NewDecoder().Reader(src), closer, nil
}

// createOutput creates path, encoding UTF-8 to encName. "-" writes to stdout.
func createOutput(path, encName string, stdout io.Writer) (io.Writer, func() error, error) {
	enc, err := lookupEncoding(encName)
	if err != nil {
		return nil, nil, err
	}
	dst := stdout
	closer := func() error { return nil }
	if !isStdio(path) {
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("create output: %w", err)
		}
		dst, closer = f, f.Close
	}
	if enc == nil {
		return dst, closer, nil
	}
	w := enc.NewEncoder().Writer(dst)
	closeFile := closer
	closer = func() error {
		// the transforming writer holds back partial input until closed
		if c, ok := w.(io.Closer); ok {
			if err := c.Close(); err != nil {
				closeFile()
				return err
			}
		}
		return closeFile()
	}
	return w, closer, nil
}
