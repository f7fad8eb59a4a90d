// Package scheduler debounces edit events into background check runs,
// with a hard guarantee of at most one run in flight.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// State is the scheduler's lifecycle position.
type State uint8

const (
	Idle State = iota
	Pending
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Running:
		return "running"
	}
	return "unknown"
}

// Runner executes one check for path and returns the document version
// current after the run (including any version bump the run's own
// format-and-save produced). That version becomes the new high-water
// mark, so self-triggered edits never re-arm the timer.
type Runner func(ctx context.Context, path string) (version int64, err error)

// Options configures a Scheduler.
type Options struct {
	// Debounce is the quiet period after the last edit.
	Debounce time.Duration
	// Settle is the startup delay before the initial run.
	Settle time.Duration
	// Qualifies filters paths; nil accepts everything.
	Qualifies func(path string) bool
	// InternalSave reports whether a save event happening now was
	// produced by the checker itself (its format hook).
	InternalSave func() bool
	Warn         io.Writer
}

// Scheduler owns all the state the auto-check needs: the pending timer,
// the running flag and the per-document high-water versions. Construct
// one per workspace and Close it at shutdown.
type Scheduler struct {
	opts Options
	run  Runner

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu        sync.Mutex
	timer     *time.Timer
	running   bool
	closed    bool
	highWater map[string]int64
}

func New(run Runner, opts Options) *Scheduler {
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		opts:      opts,
		run:       run,
		baseCtx:   ctx,
		cancel:    cancel,
		highWater: make(map[string]int64),
	}
}

// State reports the current lifecycle position.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.running:
		return Running
	case s.timer != nil:
		return Pending
	default:
		return Idle
	}
}

// Edit records a document change. Events at or below the recorded
// high-water mark are the scheduler's own doing and are ignored. A
// qualifying edit re-arms the debounce timer unless a run is in flight,
// in which case it is dropped: a later edit or save will retrigger.
func (s *Scheduler) Edit(path string, version int64) {
	if !s.qualifies(path) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.running {
		return
	}
	if version <= s.highWater[path] {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.opts.Debounce, func() {
		s.fire(path)
	})
}

// Save runs a check immediately unless the save came from the checker
// itself or a run is already in flight.
func (s *Scheduler) Save(path string) {
	if !s.qualifies(path) {
		return
	}
	if s.opts.InternalSave != nil && s.opts.InternalSave() {
		return
	}
	s.mu.Lock()
	if s.closed || s.running {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.fire(path)
	}()
}

// Startup schedules one run after the settle delay, if the scheduler is
// still idle by then and the document qualifies.
func (s *Scheduler) Startup(path string) {
	if !s.qualifies(path) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.timer != nil || s.running {
		return
	}
	s.timer = time.AfterFunc(s.opts.Settle, func() {
		s.fire(path)
	})
}

// Close cancels any pending timer, stops accepting events and cancels
// the context handed to an in-flight run.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

// fire transitions to Running, invokes the runner once and always
// restores Idle, whatever the runner did.
func (s *Scheduler) fire(path string) {
	s.mu.Lock()
	if s.closed || s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.timer = nil
	s.mu.Unlock()

	version, err := s.run(s.baseCtx, path)

	s.mu.Lock()
	if err != nil && s.opts.Warn != nil {
		fmt.Fprintf(s.opts.Warn, "mqcheck: check failed: %v\n", err)
	}
	if version > s.highWater[path] {
		s.highWater[path] = version
	}
	s.running = false
	s.mu.Unlock()
}

func (s *Scheduler) qualifies(path string) bool {
	if s.opts.Qualifies == nil {
		return true
	}
	return s.opts.Qualifies(path)
}
