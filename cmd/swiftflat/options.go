package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oleg578/swiftflat"
	"github.com/oleg578/swiftflat/schema"
)

// readOptions are the parsing flags shared by every command.
type readOptions struct {
	schemaPath     string
	encoding       string
	onInsufficient string
	onOverflow     string
	onUndefined    string
	keepGoing      bool
	capacity       int
}

func (o *readOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.schemaPath, "schema", "s", "", "YAML schema of the input")
	cmd.Flags().StringVar(&o.encoding, "encoding", "", "input character encoding (default utf-8)")
	cmd.Flags().StringVar(&o.onInsufficient, "on-insufficient", "ignore", "policy for short lines (ignore, warn, omit, abort)")
	cmd.Flags().StringVar(&o.onOverflow, "on-overflow", "ignore", "policy for CSV lines with extra fields")
	cmd.Flags().StringVar(&o.onUndefined, "on-undefined", "warn", "policy for lines no line type matches")
	cmd.Flags().BoolVarP(&o.keepGoing, "keep-going", "k", false, "record errors and continue instead of stopping at the first")
	cmd.Flags().IntVar(&o.capacity, "capacity", swiftflat.DefaultCapacity, "longest accepted line in characters")
	_ = cmd.MarkFlagRequired("schema")
}

// newReader builds a reader of src. The recorder is nil unless keepGoing is set.
func (o *readOptions) newReader(src io.Reader, s *schema.Schema) (*swiftflat.Reader, *swiftflat.ErrorRecorder, error) {
	r := swiftflat.NewReaderSize(src, s, o.capacity)
	for _, p := range []struct {
		flag   string
		value  string
		target *swiftflat.Policy
	}{
		{"on-insufficient", o.onInsufficient, &r.OnInsufficient},
		{"on-overflow", o.onOverflow, &r.OnOverflow},
		{"on-undefined", o.onUndefined, &r.OnUndefinedLine},
	} {
		policy, ok := swiftflat.ParsePolicy(p.value)
		if !ok {
			return nil, nil, fmt.Errorf("--%s: unknown policy %q", p.flag, p.value)
		}
		*p.target = policy
	}
	if !o.keepGoing {
		return r, nil, nil
	}
	rec := &swiftflat.ErrorRecorder{}
	r.ErrorHandler = rec
	return r, rec, nil
}

// source is an opened input ready to be parsed.
type source struct {
	schema   *schema.Schema
	reader   *swiftflat.Reader
	recorder *swiftflat.ErrorRecorder
	close    func() error
}

// open loads the schema and opens the input.
func (o *readOptions) open(path string, stdin io.Reader) (*source, error) {
	s, err := loadSchemaFile(o.schemaPath)
	if err != nil {
		return nil, err
	}
	src, closeInput, err := openInput(path, o.encoding, stdin)
	if err != nil {
		return nil, err
	}
	r, rec, err := o.newReader(src, s)
	if err != nil {
		closeInput()
		return nil, err
	}
	return &source{schema: s, reader: r, recorder: rec, close: closeInput}, nil
}

// reportRecorded logs the recorded errors and returns a summary error when there were any.
func reportRecorded(rec *swiftflat.ErrorRecorder) error {
	if rec == nil || rec.Len() == 0 {
		return nil
	}
	for _, err := range rec.Errors() {
		log.Errorf("%s", err)
	}
	return fmt.Errorf("%d recoverable errors", rec.Len())
}
