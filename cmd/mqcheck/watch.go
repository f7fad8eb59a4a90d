package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"mqcheck/internal/checker"
	"mqcheck/internal/diagfmt"
	"mqcheck/internal/includes"
	"mqcheck/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch the workspace and re-check changed files automatically",
	Long:  `Watch the workspace for changes to .mq4/.mq5/.mqh files, keep the include graph fresh and run a debounced syntax check on the changed file`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

const watchSettle = 2 * time.Second

func init() {
	watchCmd.Flags().String("focus", "", "file to check once after the startup settle delay")
}

// docVersions assigns a monotonically increasing version to every file
// event, so the scheduler can tell fresh edits from its own high-water
// mark.
type docVersions struct {
	mu sync.Mutex
	m  map[string]int64
}

func (v *docVersions) bump(path string) int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.m[path]++
	return v.m[path]
}

func (v *docVersions) current(path string) int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.m[path]
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	abs, err := absArg(dir)
	if err != nil {
		return err
	}

	a, err := openApp(cmd, abs, false)
	if err != nil {
		return err
	}

	versions := &docVersions{m: make(map[string]int64)}
	runner := func(ctx context.Context, path string) (int64, error) {
		res, err := a.coord.Run(ctx, checker.Request{Path: path, Mode: checker.ModeCheck})
		if err != nil {
			return 0, err
		}
		reportWatchRun(cmd, a, path, res)
		return versions.current(path), nil
	}

	sched := scheduler.New(runner, scheduler.Options{
		Debounce:     a.cfg.Debounce(),
		Settle:       watchSettle,
		Qualifies:    func(path string) bool { return includes.KindOf(path) != includes.KindOther },
		InternalSave: a.coord.InternalWriteActive,
		Warn:         a.warn,
	})
	defer sched.Close()

	watcher, err := includes.Watch(a.cfg.Root, func(path string, op fsnotify.Op) {
		if op.Has(fsnotify.Create) || op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			a.index.MarkDirty()
		}
		if op.Has(fsnotify.Write) || op.Has(fsnotify.Create) {
			sched.Edit(path, versions.bump(path))
		}
	}, a.warn)
	if err != nil {
		return err
	}
	defer func() {
		_ = watcher.Close()
	}()

	if focus, _ := cmd.Flags().GetString("focus"); focus != "" {
		focusAbs, err := absArg(focus)
		if err != nil {
			return err
		}
		sched.Startup(focusAbs)
	}

	fmt.Fprintf(a.warn, "mqcheck: watching %s\n", a.cfg.Root)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}

func reportWatchRun(cmd *cobra.Command, a *app, path string, res *checker.BatchResult) {
	if res.Skipped {
		fmt.Fprintf(a.warn, "mqcheck: %s\n", res.SkipReason)
		return
	}
	for _, tr := range res.Targets {
		if tr.ConfigErr != nil {
			fmt.Fprintf(a.warn, "mqcheck: %s: %v\n", tr.Target, tr.ConfigErr)
		}
	}
	res.Diags.Sort()
	if res.Diags.Len() == 0 {
		fmt.Fprintf(a.warn, "mqcheck: %s: ok\n", path)
		return
	}
	diagfmt.Pretty(os.Stdout, res.Diags, diagfmt.PrettyOpts{Color: useColor(cmd)})
}
