// Package checker orchestrates one check/compile request end to end:
// target resolution, compiler runs, log parsing, diagnostic merging.
package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"mqcheck/internal/compiler"
	"mqcheck/internal/config"
	"mqcheck/internal/diag"
	"mqcheck/internal/includes"
	"mqcheck/internal/mqlog"
	"mqcheck/internal/targets"
	"mqcheck/internal/winepath"
)

// Mode selects a syntax check or a full compile.
type Mode uint8

const (
	ModeCheck Mode = iota
	ModeCompile
)

// Request asks for one file to be validated.
type Request struct {
	Path string
	Mode Mode
}

// TargetResult records the outcome for one compile target.
type TargetResult struct {
	Target string
	Flavor includes.Flavor
	// ConfigErr marks a target skipped before spawning (missing
	// binary or include dir). The batch continues.
	ConfigErr error
	Run       compiler.Result
	Parse     *mqlog.Result
}

// BatchResult aggregates one coordinator run.
type BatchResult struct {
	Targets []TargetResult
	// Diags holds the merged diagnostics: each target run fully
	// replaces earlier diagnostics for the files it touched.
	Diags *diag.Bag
	// Links is the merged hover/link table, threaded explicitly from
	// the log parser to whoever renders the log.
	Links map[string]mqlog.Link
	// HasErrors is the batch-level error flag.
	HasErrors bool
	// Skipped is set when no compile happened at all, with the reason.
	Skipped    bool
	SkipReason string
}

// Coordinator wires the resolver, the process orchestrator and the log
// parser together. One instance per workspace.
type Coordinator struct {
	Config       *config.Config
	Resolver     *targets.Resolver
	Orchestrator *compiler.Orchestrator
	Translator   *winepath.Translator

	// FormatHook, when set, formats and saves the file before
	// compiling (an external formatter in CLI use, the editor's
	// format-on-save in embedded use).
	FormatHook func(ctx context.Context, path string) error
	// RefreshHook, when set, pokes an external diagnostics engine
	// after the batch. Best effort, errors are only logged.
	RefreshHook func(ctx context.Context) error

	Warn io.Writer

	internalWrites atomic.Int64
}

// InternalWriteActive reports whether a save happening right now was
// produced by the coordinator itself (the format hook). The scheduler
// uses this to ignore self-triggered events.
func (c *Coordinator) InternalWriteActive() bool {
	return c.internalWrites.Load() > 0
}

func (c *Coordinator) warnf(format string, args ...any) {
	if c.Warn != nil {
		fmt.Fprintf(c.Warn, format, args...)
	}
}

// Run executes one request. Per-target failures never abort the batch;
// partial success is the design.
func (c *Coordinator) Run(ctx context.Context, req Request) (*BatchResult, error) {
	res := &BatchResult{
		Diags: diag.NewBag(16),
		Links: make(map[string]mqlog.Link),
	}

	if c.FormatHook != nil {
		c.internalWrites.Add(1)
		err := c.FormatHook(ctx, req.Path)
		c.internalWrites.Add(-1)
		if err != nil {
			c.warnf("mqcheck: format hook failed: %v\n", err)
		}
	}

	list, skipReason, err := c.resolveTargets(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		res.Skipped = true
		res.SkipReason = skipReason
		return res, nil
	}

	// strictly sequential: concurrent runs would race on the shared
	// log-file naming and on diagnostic collection
	for _, target := range list {
		res.Targets = append(res.Targets, c.runTarget(ctx, target, req.Mode))
	}

	for i := range res.Targets {
		tr := &res.Targets[i]
		if tr.Parse == nil {
			continue
		}
		for file, ds := range tr.Parse.Diagnostics {
			res.Diags.ReplaceFile(file, ds)
		}
		for line, link := range tr.Parse.Links {
			res.Links[line] = link
		}
		if tr.Parse.HasErrors {
			res.HasErrors = true
		}
	}

	if c.RefreshHook != nil {
		if err := c.RefreshHook(ctx); err != nil {
			c.warnf("mqcheck: diagnostics refresh failed: %v\n", err)
		}
	}
	return res, nil
}

func (c *Coordinator) resolveTargets(ctx context.Context, path string) ([]string, string, error) {
	switch includes.KindOf(path) {
	case includes.KindRoot:
		return []string{includes.NormPath(path)}, "", nil
	case includes.KindHeader:
		list, err := c.Resolver.Resolve(ctx, path)
		if errors.Is(err, targets.ErrAmbiguous) {
			return nil, fmt.Sprintf("%s: several possible compile targets; pick one with `mqcheck targets set`", path), nil
		}
		if err != nil {
			return nil, "", err
		}
		if len(list) == 0 {
			return nil, fmt.Sprintf("%s: no compile target found", path), nil
		}
		return list, "", nil
	default:
		return nil, "", fmt.Errorf("%s: not an MQL source file", path)
	}
}

func (c *Coordinator) runTarget(ctx context.Context, target string, mode Mode) TargetResult {
	tr := TargetResult{Target: target, Flavor: includes.FlavorOf(target)}

	fc, err := c.Config.Flavor(tr.Flavor)
	if err != nil {
		tr.ConfigErr = err
		return tr
	}
	if _, err := os.Stat(fc.Compiler); err != nil {
		tr.ConfigErr = fmt.Errorf("compiler binary %s: %w", fc.Compiler, err)
		return tr
	}
	if fc.Include != "" {
		if _, err := os.Stat(fc.Include); err != nil {
			tr.ConfigErr = fmt.Errorf("include dir %s: %w", fc.Include, err)
			return tr
		}
	}

	native := filepath.FromSlash(target)
	logPath := strings.TrimSuffix(native, filepath.Ext(native)) + ".log"
	job := &compiler.Job{
		Binary:     fc.Compiler,
		Target:     native,
		LogArg:     logPath,
		LogPath:    logPath,
		IncludeDir: fc.Include,
		Portable:   fc.Portable,
		SyntaxOnly: mode == ModeCheck,
		UseWine:    fc.Wine,
		WinePrefix: fc.WinePrefix,
	}
	if fc.Wine {
		// hard timeout applies only to shimmed execution
		job.Timeout = fc.Timeout()
		job.Target = c.translate(ctx, native)
		job.LogArg = c.translate(ctx, logPath)
		if fc.Include != "" {
			job.IncludeDir = c.translate(ctx, fc.Include)
		}
	}

	tr.Run = c.Orchestrator.Run(ctx, job)
	switch {
	case tr.Run.LaunchErr != nil:
		c.warnf("mqcheck: %s: compiler %s: %v\n", target, tr.Run.LaunchKind, tr.Run.LaunchErr)
	case tr.Run.TimedOut && !tr.Run.Success:
		c.warnf("mqcheck: %s: compiler timed out\n", target)
	case !tr.Run.Success:
		c.warnf("mqcheck: %s: compile log never appeared (likely a failed launch)\n", target)
	}
	if !tr.Run.Success {
		return tr
	}

	text, err := mqlog.Decode(tr.Run.Log)
	if err != nil {
		c.warnf("mqcheck: %s: log decode: %v\n", target, err)
	}
	parseMode := mqlog.ModeCheck
	if mode == ModeCompile {
		parseMode = mqlog.ModeCompile
	}
	tr.Parse = mqlog.Parse(text, parseMode)
	return tr
}

// translate converts a path for the shimmed binary, degrading to the
// original path (with a note) when conversion fails.
func (c *Coordinator) translate(ctx context.Context, path string) string {
	out, err := c.Translator.ToWindows(ctx, path)
	if err != nil {
		c.warnf("mqcheck: path translation degraded: %v\n", err)
	}
	return out
}
