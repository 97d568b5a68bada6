package main

import (
	"fmt"

	"github.com/dhamidi/classkit/classfile"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

func newDisasmCmd() *cobra.Command {
	var (
		method  string
		indices bool
		chop    bool
	)

	cmd := &cobra.Command{
		Use:   "disasm <file.class>",
		Short: "Disassemble the bytecode of a class file's methods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			class, err := classfile.ParseFile(args[0], parseOptions()...)
			if err != nil {
				return fmt.Errorf("parse class file: %w", err)
			}
			cp := class.ConstantPool

			found := false
			for i := range class.Methods {
				m := &class.Methods[i]
				if method != "" && m.Name(cp) != method {
					continue
				}
				found = true

				decl, err := m.Declaration(cp, chop)
				if err != nil {
					return fmt.Errorf("method %s: %w", m.Name(cp), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", decl)

				code := m.Code()
				if code == nil {
					fmt.Fprintln(cmd.OutOrStdout())
					continue
				}
				text, err := classfile.NewDisassembler(cp,
					classfile.WithVerbose(indices),
					classfile.WithDisassemblerLogger(commonlog.GetLogger("classkit.disasm")),
				).String(code.Code)
				if err != nil {
					return fmt.Errorf("disassemble %s: %w", m.Name(cp), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", text)
			}
			if method != "" && !found {
				return fmt.Errorf("no method named %s in %s", method, class.ClassName())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "", "only disassemble methods with this name")
	cmd.Flags().BoolVar(&indices, "indices", false, "append constant pool indices to operands")
	cmd.Flags().BoolVar(&chop, "chop", false, "abbreviate java.lang class names")

	return cmd
}
