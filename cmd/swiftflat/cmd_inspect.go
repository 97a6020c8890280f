package main

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/spf13/cobra"

	"github.com/oleg578/swiftflat/columnar"
)

func newInspectCmd() *cobra.Command {
	var (
		in        readOptions
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "inspect [input]",
		Short: "Load a file into columnar batches and summarize it",
		Long: `Parse a file into Arrow record batches, one table per line type, and print the
column types and row counts of every line type of the schema.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) > 0 {
				input = args[0]
			}
			src, err := in.open(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer src.close()

			rows := make(map[string]int64)
			batches := make(map[string]int)
			sink := columnar.NewSink(src.schema, nil, batchSize, func(lineType string, batch arrow.Record) error {
				defer batch.Release()
				rows[lineType] += batch.NumRows()
				batches[lineType]++
				return nil
			})
			defer sink.Release()

			if err := src.reader.Parse(sink); err != nil {
				return fmt.Errorf("inspect: %w", err)
			}
			if err := sink.Flush(); err != nil {
				return fmt.Errorf("inspect: %w", err)
			}

			out := cmd.OutOrStdout()
			seen := make(map[string]bool)
			for i := range src.schema.Lines {
				lineType := src.schema.Lines[i].LineType
				if seen[lineType] {
					continue
				}
				seen[lineType] = true
				fmt.Fprintf(out, "%s: %d rows in %d batches\n", lineType, rows[lineType], batches[lineType])
				if s, ok := sink.Schema(lineType); ok {
					for _, f := range s.Fields() {
						fmt.Fprintf(out, "  %s: %s\n", f.Name, f.Type)
					}
				}
			}
			if n := sink.Skipped(); n > 0 {
				fmt.Fprintf(out, "skipped %d records of unknown line types\n", n)
			}
			return reportRecorded(src.recorder)
		},
	}

	in.register(cmd)
	cmd.Flags().IntVar(&batchSize, "batch-size", columnar.DefaultBatchSize, "rows per record batch")

	return cmd
}
