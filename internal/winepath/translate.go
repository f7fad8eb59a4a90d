// Package winepath converts native paths into the Windows dialect expected
// by a compiler binary running under Wine.
package winepath

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
)

// Translator shells out to the wine shim's path-conversion subcommand.
// A non-empty Prefix selects an isolated wine profile via WINEPREFIX.
type Translator struct {
	// Binary is the winepath executable, "winepath" when empty.
	Binary string
	// Prefix is the WINEPREFIX directory, inherited from the
	// environment when empty.
	Prefix string
}

var driveLetterRe = regexp.MustCompile(`^[A-Za-z]:`)

// IsWindowsPath reports whether p is already in the Windows dialect
// (drive letter, UNC prefix, or backslash separators).
func IsWindowsPath(p string) bool {
	return driveLetterRe.MatchString(p) ||
		strings.HasPrefix(p, `\\`) ||
		strings.Contains(p, `\`)
}

// ToWindows converts a native path to its Windows-dialect equivalent.
// On failure the original path is returned along with the error; callers
// are expected to log and continue in degraded mode rather than abort.
//
// Feeding an already-Windows path to winepath would silently invoke the
// wrong conversion semantics, so that case fails fast.
func (t *Translator) ToWindows(ctx context.Context, path string) (string, error) {
	if runtime.GOOS == "windows" {
		return path, nil
	}
	if IsWindowsPath(path) {
		return path, fmt.Errorf("path %q is already in Windows dialect", path)
	}
	bin := t.Binary
	if bin == "" {
		bin = "winepath"
	}
	cmd := exec.CommandContext(ctx, bin, "-w", path)
	if t.Prefix != "" {
		cmd.Env = append(os.Environ(), "WINEPREFIX="+t.Prefix)
	}
	out, err := cmd.Output()
	if err != nil {
		return path, fmt.Errorf("winepath -w %q: %w", path, err)
	}
	translated := strings.TrimSpace(string(out))
	if translated == "" {
		return path, fmt.Errorf("winepath -w %q: empty output", path)
	}
	return translated, nil
}
