package main

import (
	"fmt"

	"github.com/dhamidi/classkit/classfile"
	"github.com/spf13/cobra"
)

func newRoundtripCmd() *cobra.Command {
	var keepGoing bool

	cmd := &cobra.Command{
		Use:   "roundtrip <file>",
		Short: "Parse and re-write classes, reporting any byte that changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var checked, failed int
			err := eachClass(args[0], func(entry classEntry) error {
				checked++
				if err := roundtrip(entry.Data); err != nil {
					failed++
					if !keepGoing {
						return fmt.Errorf("%s: %w", entry.Name, err)
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", entry.Name, err)
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d classes, %d mismatched\n", checked, failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d classes did not round-trip", failed, checked)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&keepGoing, "keep-going", "k", false, "check every class instead of stopping at the first mismatch")

	return cmd
}

func roundtrip(data []byte) error {
	class, err := classfile.ParseBytes(data, parseOptions()...)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	out, err := class.Bytes()
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	if at := firstDifference(data, out); at >= 0 {
		return fmt.Errorf("first difference at byte %d (read %d bytes, wrote %d)", at, len(data), len(out))
	}
	return nil
}
