package diagfmt

import (
	"encoding/json"
	"io"

	"mqcheck/internal/diag"
)

type jsonDiagnostic struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Col      int    `json:"col"`
	Severity string `json:"severity"`
	Code     int    `json:"code,omitempty"`
	Message  string `json:"message"`
}

type jsonReport struct {
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
	HasErrors   bool             `json:"has_errors"`
}

// JSON writes the machine-readable report. Positions stay 0-based, the
// same contract the editor diagnostics surface uses.
func JSON(w io.Writer, bag *diag.Bag) error {
	report := jsonReport{
		Diagnostics: make([]jsonDiagnostic, 0, bag.Len()),
		HasErrors:   bag.HasErrors(),
	}
	for _, d := range bag.Items() {
		report.Diagnostics = append(report.Diagnostics, jsonDiagnostic{
			File:     d.File,
			Line:     d.Pos.Line,
			Col:      d.Pos.Col,
			Severity: d.Severity.String(),
			Code:     d.Code,
			Message:  d.Message,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
