package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mqcheck/internal/checker"
	"mqcheck/internal/diagfmt"
)

// runCompileRequest is the shared body of `check` and `compile`.
func runCompileRequest(cmd *cobra.Command, arg string, mode checker.Mode) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	noInput, err := cmd.Flags().GetBool("no-input")
	if err != nil {
		return err
	}
	showLog, err := cmd.Flags().GetBool("show-log")
	if err != nil {
		return err
	}

	path, err := absArg(arg)
	if err != nil {
		return err
	}

	interactive := !noInput && isTerminal(os.Stdin) && isTerminal(os.Stdout)
	a, err := openApp(cmd, filepath.Dir(path), interactive)
	if err != nil {
		return err
	}

	res, err := a.coord.Run(cmd.Context(), checker.Request{Path: path, Mode: mode})
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Fprintf(a.warn, "mqcheck: %s\n", res.SkipReason)
		return nil
	}

	for _, tr := range res.Targets {
		if tr.ConfigErr != nil {
			fmt.Fprintf(a.warn, "mqcheck: %s: %v\n", tr.Target, tr.ConfigErr)
		}
	}

	res.Diags.Sort()
	switch format {
	case "json":
		if err := diagfmt.JSON(os.Stdout, res.Diags); err != nil {
			return err
		}
	default:
		diagfmt.Pretty(os.Stdout, res.Diags, diagfmt.PrettyOpts{Color: useColor(cmd)})
	}

	if showLog {
		for _, tr := range res.Targets {
			if tr.Parse == nil {
				continue
			}
			fmt.Fprintf(os.Stdout, "== %s ==\n%s\n", tr.Target, tr.Parse.Display)
		}
	}

	if res.HasErrors {
		// diagnostics already printed, fail silently
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}
