// Package compiler runs the external MetaEditor compiler and retrieves
// its log. Every failure mode is returned as result data; callers decide
// what to surface.
package compiler

import "time"

// Job describes one compiler invocation.
type Job struct {
	// Binary is the compiler executable (metaeditor.exe / metaeditor64.exe).
	Binary string
	// Target is the path handed to /compile:. Under Wine this is the
	// translated Windows-dialect path.
	Target string
	// LogArg is the path handed to /log:, in the dialect the compiler
	// expects. LogPath is where the same file appears to this process.
	LogArg  string
	LogPath string
	// IncludeDir is the optional /inc: directory.
	IncludeDir string
	// Portable adds /portable for portable-mode terminal installs.
	Portable bool
	// SyntaxOnly asks for a syntax check instead of a full compile.
	SyntaxOnly bool

	// UseWine runs the Windows binary through the compatibility shim.
	UseWine bool
	// WinePrefix selects the isolated wine profile, empty inherits.
	WinePrefix string
	// Timeout is the hard deadline. The coordinator sets it only for
	// shimmed execution; zero means no deadline.
	Timeout time.Duration
}

// Args assembles the compiler argument array. Arguments are passed as an
// array, never through a shell, so hostile paths cannot inject commands.
func (j *Job) Args() []string {
	args := []string{"/compile:" + j.Target, "/log:" + j.LogArg}
	if j.IncludeDir != "" {
		args = append(args, "/inc:"+j.IncludeDir)
	}
	if j.SyntaxOnly {
		args = append(args, "/s")
	}
	if j.Portable {
		args = append(args, "/portable")
	}
	return args
}
