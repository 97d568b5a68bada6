package main

import (
	"fmt"
	"strings"

	"github.com/dhamidi/classkit/classfile"
	"github.com/spf13/cobra"
)

func newSignatureCmd() *cobra.Command {
	var (
		chop   bool
		name   string
		access string
	)

	cmd := &cobra.Command{
		Use:   "signature <signature>",
		Short: "Render a type, method or class signature as Java source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := renderSignature(args[0], name, access, chop)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.Flags().BoolVar(&chop, "chop", false, "abbreviate java.lang class names")
	cmd.Flags().StringVar(&name, "name", "m", "method name used when rendering a method signature")
	cmd.Flags().StringVar(&access, "access", "", "modifiers placed before a method signature")

	return cmd
}

// renderSignature picks the grammar from the signature's shape: a '(' means
// a method, a leading '<' or more than one type means a class, anything else
// is a single type.
func renderSignature(sig, name, access string, chop bool) (string, error) {
	if strings.Contains(sig, "(") {
		return classfile.MethodSignatureToString(sig, name, access, chop, nil)
	}
	if !strings.HasPrefix(sig, "<") {
		s, n, err := classfile.ParseTypeSignature(sig, chop)
		if err != nil {
			return "", err
		}
		if n == len(sig) {
			return s, nil
		}
	}
	cs, err := classfile.ParseClassSignature(sig, chop)
	if err != nil {
		return "", err
	}
	return cs.String(), nil
}
