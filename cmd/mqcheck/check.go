package main

import (
	"github.com/spf13/cobra"

	"mqcheck/internal/checker"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.mq4|file.mq5|file.mqh>",
	Short: "Syntax-check the compile target(s) for a source file",
	Long:  `Resolve the compile target(s) for the given file (headers go through the include graph and the persisted mapping), run the compiler in syntax-check mode and print the diagnostics`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompileRequest(cmd, args[0], checker.ModeCheck)
	},
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Bool("no-input", false, "never prompt; ambiguous headers are skipped")
	checkCmd.Flags().Bool("show-log", false, "print the parsed compiler log after the diagnostics")
}
