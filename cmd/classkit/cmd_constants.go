package main

import (
	"fmt"

	"github.com/dhamidi/classkit/classfile"
	"github.com/spf13/cobra"
)

func newConstantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "constants <file.class>",
		Short: "List the constant pool of a class file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			class, err := classfile.ParseFile(args[0], parseOptions()...)
			if err != nil {
				return fmt.Errorf("parse class file: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), class.ConstantPool.String())
			return nil
		},
	}
}
