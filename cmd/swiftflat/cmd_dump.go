package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oleg578/swiftflat"
	"github.com/oleg578/swiftflat/model"
)

func newDumpCmd() *cobra.Command {
	var (
		in     readOptions
		format string
	)

	cmd := &cobra.Command{
		Use:   "dump [input]",
		Short: "Print the records of a file",
		Long: `Parse a file with a schema and print every record.

Formats:
  line  - one record per line: line number, line type and cells
  yaml  - one YAML document per record`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) > 0 {
				input = args[0]
			}
			var h swiftflat.LineHandler
			switch format {
			case "line":
				h = lineDumper(cmd.OutOrStdout())
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				h = yamlDumper(enc)
			default:
				return fmt.Errorf("unknown format %q (expected line or yaml)", format)
			}

			src, err := in.open(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer src.close()
			if err := src.reader.Parse(h); err != nil {
				return fmt.Errorf("dump: %w", err)
			}
			return reportRecorded(src.recorder)
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "line", "output format (line, yaml)")

	return cmd
}

func lineDumper(w io.Writer) swiftflat.LineHandler {
	return swiftflat.LineHandlerFunc(func(rec *model.Record) error {
		_, err := fmt.Fprintf(w, "%d: %s\n", rec.LineNumber, rec)
		return err
	})
}

func yamlDumper(enc *yaml.Encoder) swiftflat.LineHandler {
	return swiftflat.LineHandlerFunc(func(rec *model.Record) error {
		return enc.Encode(recordNode(rec))
	})
}

// recordNode keeps the cell order of rec, which a map would lose.
func recordNode(rec *model.Record) *yaml.Node {
	cells := &yaml.Node{Kind: yaml.MappingNode}
	for i, c := range rec.Cells {
		name := c.Name
		if name == "" {
			name = "_" + strconv.Itoa(i+1)
		}
		cells.Content = append(cells.Content, scalar("!!str", name), valueNode(c.Value))
	}
	return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		scalar("!!str", "line"), scalar("!!int", strconv.FormatInt(rec.LineNumber, 10)),
		scalar("!!str", "type"), scalar("!!str", rec.LineType),
		scalar("!!str", "cells"), cells,
	}}
}

func valueNode(v model.Value) *yaml.Node {
	switch v.Kind() {
	case model.Empty:
		return scalar("!!null", "")
	case model.Integer:
		return scalar("!!int", v.String())
	case model.Float, model.Decimal:
		return scalar("!!float", v.String())
	case model.Boolean:
		return scalar("!!bool", v.String())
	case model.Date:
		return scalar("!!timestamp", v.String())
	}
	return scalar("!!str", v.String())
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

