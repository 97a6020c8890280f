package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oleg578/swiftflat"
	"github.com/oleg578/swiftflat/pipeline"
)

func newConvertCmd() *cobra.Command {
	var (
		in          readOptions
		toSchema    string
		output      string
		outEncoding string
		concurrent  bool
		queueSize   int
	)

	cmd := &cobra.Command{
		Use:   "convert [input]",
		Short: "Rewrite a file from one schema into another",
		Long: `Read a file with the input schema and write every record with the output schema.

Records keep their line type, so every line type of the input that reaches the output
must be defined in the output schema. Without --to the input schema is used for both
sides, which normalizes padding, alignment and number formats.

Examples:
  swiftflat convert -s bank.yaml --to bank-csv.yaml statement.txt -o statement.csv
  swiftflat convert -s legacy.yaml --encoding windows-1252 old.dat -o new.dat
  cat orders.csv | swiftflat convert -s orders.yaml --concurrent`,
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

			outSchema := in.schemaPath
			if toSchema != "" {
				outSchema = toSchema
			}
			s, err := loadSchemaFile(outSchema)
			if err != nil {
				return err
			}
			dst, closeOutput, err := createOutput(output, outEncoding, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			w := swiftflat.NewWriter(dst, s)

			if concurrent {
				err = pipeline.Run(src.reader, w, pipeline.WithQueueSize(queueSize))
			} else {
				err = src.reader.Parse(w)
			}
			err = errors.Join(err, w.Flush(), closeOutput())
			if err != nil {
				return fmt.Errorf("convert: %w", err)
			}
			log.Infof("converted %d lines", src.reader.Line())
			return reportRecorded(src.recorder)
		},
	}

	in.register(cmd)
	cmd.Flags().StringVar(&toSchema, "to", "", "YAML schema of the output (default: the input schema)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file")
	cmd.Flags().StringVar(&outEncoding, "out-encoding", "", "output character encoding (default utf-8)")
	cmd.Flags().BoolVar(&concurrent, "concurrent", false, "write on a separate goroutine fed through a queue")
	cmd.Flags().IntVar(&queueSize, "queue-size", pipeline.DefaultQueueSize, "records buffered between reading and writing")

	return cmd
}
