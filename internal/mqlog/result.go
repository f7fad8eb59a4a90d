package mqlog

import "mqcheck/internal/diag"

// Mode selects how much of the log is kept in the rendered display text.
type Mode uint8

const (
	// ModeCheck keeps only compilation units, diagnostics and summaries.
	ModeCheck Mode = iota
	// ModeCompile additionally keeps include and info notices.
	ModeCompile
)

// LineKind classifies one raw log line.
type LineKind uint8

const (
	KindPassthrough LineKind = iota
	KindUnitStart
	KindInclude
	KindInfo
	KindDiagnostic
	KindSummary
)

// Link is a navigation target for one rendered log line.
type Link struct {
	File string
	Pos  diag.Position
}

// Result is the structured outcome of parsing one compiler log.
// Parsing is pure: the same input and mode always produce the same Result.
type Result struct {
	// Display is the rendered log text, filtered according to Mode.
	Display string
	// Diagnostics groups extracted diagnostics by the file path exactly
	// as it appears in the log.
	Diagnostics map[string][]diag.Diagnostic
	// Links maps rendered line text to its navigation target.
	Links map[string]Link
	// HasErrors is set when a summary line reports a non-zero error
	// count or any extracted diagnostic carries error severity.
	HasErrors bool
}
