// Package diagfmt renders diagnostics for terminals and tooling.
package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"mqcheck/internal/diag"
)

// PrettyOpts controls human-readable rendering.
type PrettyOpts struct {
	Color bool
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
)

// Pretty writes one line per diagnostic:
//
//	<path>:<line>:<col>: <SEVERITY> <code>: <message>
//
// positions are printed 1-based for humans. Call bag.Sort() first for a
// deterministic order.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	for _, d := range bag.Items() {
		sev := d.Severity.String()
		if opts.Color {
			sev = severityColor(d.Severity).Sprint(sev)
		}
		if d.Code != 0 {
			fmt.Fprintf(w, "%s:%d:%d: %s %d: %s\n", d.File, d.Pos.Line+1, d.Pos.Col+1, sev, d.Code, d.Message)
		} else {
			fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", d.File, d.Pos.Line+1, d.Pos.Col+1, sev, d.Message)
		}
	}
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}
