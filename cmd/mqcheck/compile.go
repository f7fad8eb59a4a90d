package main

import (
	"github.com/spf13/cobra"

	"mqcheck/internal/checker"
)

var compileCmd = &cobra.Command{
	Use:   "compile <file.mq4|file.mq5|file.mqh>",
	Short: "Fully compile the resolved target(s) for a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompileRequest(cmd, args[0], checker.ModeCompile)
	},
}

func init() {
	compileCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	compileCmd.Flags().Bool("no-input", false, "never prompt; ambiguous headers are skipped")
	compileCmd.Flags().Bool("show-log", false, "print the parsed compiler log after the diagnostics")
}
