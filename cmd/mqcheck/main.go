package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mqcheck/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "mqcheck",
	Short: "Compile orchestration for MQL trading-strategy sources",
	Long:  `mqcheck resolves compile targets for MQL4/MQL5 sources, drives the MetaEditor compiler (through wine off Windows) and turns its logs into diagnostics`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command) bool {
	flag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	return flag == "on" || (flag == "auto" && isTerminal(os.Stdout))
}
