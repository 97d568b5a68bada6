package main

import (
	"os"

	"github.com/dhamidi/classkit/classfile"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var (
	verbosity       int
	logPath         string
	internEntries   int
	internMaxLength int

	utf8Cache *classfile.Utf8Cache
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "classkit",
		Short: "Read, write and inspect JVM class files",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if logPath != "" {
				path = &logPath
			}
			commonlog.Configure(verbosity, path)

			utf8Cache = nil
			if internEntries > 0 {
				utf8Cache = classfile.NewUtf8Cache(internEntries, internMaxLength)
			}
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "write log output to this file instead of stderr")
	rootCmd.PersistentFlags().IntVar(&internEntries, "intern-cache", 0, "intern up to this many Utf8 constants across classes (0 disables)")
	rootCmd.PersistentFlags().IntVar(&internMaxLength, "intern-max-length", classfile.DefaultUtf8CacheMaxLength, "longest Utf8 constant eligible for interning")

	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newDisasmCmd())
	rootCmd.AddCommand(newSignatureCmd())
	rootCmd.AddCommand(newRoundtripCmd())
	rootCmd.AddCommand(newConstantsCmd())

	return rootCmd
}

func parseOptions() []classfile.Option {
	opts := []classfile.Option{classfile.WithLogger(commonlog.GetLogger("classkit.parse"))}
	if utf8Cache != nil {
		opts = append(opts, classfile.WithUtf8Cache(utf8Cache))
	}
	return opts
}
