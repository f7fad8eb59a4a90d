// Package mqlog turns the MetaEditor compile log into structured diagnostics.
package mqlog

import (
	"regexp"
	"strconv"
	"strings"

	"mqcheck/internal/diag"
)

// MetaEditor code 181 ("implicit conversion from 'number' to 'string'")
// fires on idiomatic MQL string building and drowns out real findings.
// Diagnostics carrying it are dropped regardless of severity.
const suppressedImplicitConvCode = 181

var (
	// C:\proj\a.mqh(10,5) : error 256: message text
	diagLineRe = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\) : ([a-z]+)(?: (\d+))?: (.+)$`)
	// Result: 3 errors, 1 warnings, 125 msec elapsed
	summaryRe = regexp.MustCompile(`(?i)^\s*result[ :].*?(\d+)\s+error`)
	quotedRe  = regexp.MustCompile(`'([^']+)'`)
)

// Parse classifies the decoded log text line by line and extracts
// diagnostics, navigation links and the overall error flag.
func Parse(text string, mode Mode) *Result {
	res := &Result{
		Diagnostics: make(map[string][]diag.Diagnostic),
		Links:       make(map[string]Link),
	}
	var display []string
	for _, line := range splitLines(text) {
		kind := Classify(line)
		switch kind {
		case KindDiagnostic:
			d, ok := parseDiagnostic(line)
			if !ok {
				display = append(display, line)
				continue
			}
			display = append(display, line)
			res.Links[line] = Link{File: d.File, Pos: d.Pos}
			if d.Code == suppressedImplicitConvCode {
				continue
			}
			res.Diagnostics[d.File] = append(res.Diagnostics[d.File], d)
			if d.Severity >= diag.SevError {
				res.HasErrors = true
			}
		case KindSummary:
			display = append(display, line)
			if m := summaryRe.FindStringSubmatch(line); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
					res.HasErrors = true
				}
			}
		case KindUnitStart:
			display = append(display, line)
			if name, ok := quotedName(line); ok {
				res.Links[line] = Link{File: name}
			}
		case KindInclude, KindInfo:
			if mode == ModeCompile {
				display = append(display, line)
				if name, ok := quotedName(line); ok && kind == KindInclude {
					res.Links[line] = Link{File: name}
				}
			}
		default:
			display = append(display, line)
		}
	}
	res.Display = strings.Join(display, "\n")
	return res
}

// Classify assigns a LineKind to one raw log line. Anything the parser
// does not recognize degrades to passthrough, never to an error.
func Classify(line string) LineKind {
	switch {
	case diagLineRe.MatchString(line) && hasSeverityWord(line):
		return KindDiagnostic
	case summaryRe.MatchString(line):
		return KindSummary
	case strings.Contains(line, ": information: compiling"),
		strings.Contains(line, ": information: checking"):
		return KindUnitStart
	case strings.Contains(line, ": information: including"):
		return KindInclude
	case strings.Contains(line, ": information: "):
		return KindInfo
	default:
		return KindPassthrough
	}
}

func parseDiagnostic(line string) (diag.Diagnostic, bool) {
	m := diagLineRe.FindStringSubmatch(line)
	if m == nil {
		return diag.Diagnostic{}, false
	}
	sev, ok := severityOf(m[4])
	if !ok {
		return diag.Diagnostic{}, false
	}
	line1, err := strconv.Atoi(m[2])
	if err != nil {
		return diag.Diagnostic{}, false
	}
	col1, err := strconv.Atoi(m[3])
	if err != nil {
		return diag.Diagnostic{}, false
	}
	code := 0
	if m[5] != "" {
		code, err = strconv.Atoi(m[5])
		if err != nil {
			return diag.Diagnostic{}, false
		}
	}
	return diag.Diagnostic{
		File: m[1],
		// the compiler reports 1-based positions
		Pos:      diag.Position{Line: max(line1-1, 0), Col: max(col1-1, 0)},
		Severity: sev,
		Code:     code,
		Message:  m[6],
	}, true
}

func severityOf(token string) (diag.Severity, bool) {
	switch {
	case strings.Contains(token, "error"):
		return diag.SevError, true
	case strings.Contains(token, "warning"):
		return diag.SevWarning, true
	default:
		return diag.SevInfo, false
	}
}

func hasSeverityWord(line string) bool {
	m := diagLineRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	_, ok := severityOf(m[4])
	return ok
}

func quotedName(line string) (string, bool) {
	m := quotedRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
