package main

import (
	"fmt"

	"github.com/dhamidi/classkit/classfile"
	"github.com/dhamidi/classkit/format"
	"github.com/spf13/cobra"
)

func newDumpCmd() *cobra.Command {
	var (
		dumpFormat string
		withCode   bool
		chop       bool
	)

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Dump the classes of a .class, .jar or .zip file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var newEncoder func() format.Encoder
			switch dumpFormat {
			case "json":
				newEncoder = func() format.Encoder { return format.NewJSONEncoder(out) }
			case "line":
				newEncoder = func() format.Encoder { return format.NewLineEncoder(out) }
			case "listing":
				newEncoder = func() format.Encoder {
					return format.NewListingEncoder(out, format.WithCode(withCode), format.WithChop(chop))
				}
			default:
				return fmt.Errorf("unknown format: %s (expected json, line, or listing)", dumpFormat)
			}

			return eachClass(args[0], func(entry classEntry) error {
				class, err := classfile.ParseBytes(entry.Data, parseOptions()...)
				if err != nil {
					return fmt.Errorf("parse %s: %w", entry.Name, err)
				}
				if err := newEncoder().Encode(class); err != nil {
					return fmt.Errorf("encode %s: %w", entry.Name, err)
				}
				if dumpFormat == "json" {
					fmt.Fprintln(out)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "line", "output format (json, line, listing)")
	cmd.Flags().BoolVar(&withCode, "code", false, "include disassembled code in listings")
	cmd.Flags().BoolVar(&chop, "chop", false, "abbreviate java.lang class names in listings")

	return cmd
}
