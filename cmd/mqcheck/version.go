package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mqcheck/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the mqcheck build fingerprint",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "mqcheck %s\n", version.Version)
		if version.GitCommit != "" {
			fmt.Fprintf(out, "commit: %s\n", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Fprintf(out, "built:  %s\n", version.BuildDate)
		}
	},
}
