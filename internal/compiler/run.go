package compiler

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// LaunchKind distinguishes why the compiler process failed to start.
type LaunchKind uint8

const (
	LaunchOK LaunchKind = iota
	LaunchNotFound
	LaunchPermission
	LaunchOther
)

func (k LaunchKind) String() string {
	switch k {
	case LaunchOK:
		return "ok"
	case LaunchNotFound:
		return "not found"
	case LaunchPermission:
		return "permission denied"
	}
	return "launch failed"
}

// Result is the outcome of one compiler invocation. Run never panics and
// never returns an error: everything is carried here.
type Result struct {
	// Success means the log file was produced and read back.
	Success bool
	// Log holds the raw (usually UTF-16) log bytes when Success.
	Log []byte
	// LaunchErr is set when the process could not be started.
	LaunchErr  error
	LaunchKind LaunchKind
	// TimedOut is set when the hard deadline killed the process.
	TimedOut bool
}

// Orchestrator runs compile jobs and polls for their logs. The zero
// value is not usable; call New.
type Orchestrator struct {
	// LogRetries and LogBackoff bound the wait for the log file, which
	// the compiler may flush after its process has already exited.
	LogRetries int
	LogBackoff time.Duration
	// KillGrace is how long a timed-out process gets between the
	// graceful termination signal and the forceful kill.
	KillGrace time.Duration
}

func New() *Orchestrator {
	return &Orchestrator{
		LogRetries: 10,
		LogBackoff: 200 * time.Millisecond,
		KillGrace:  2 * time.Second,
	}
}

// Run executes the job and retrieves its log.
func (o *Orchestrator) Run(ctx context.Context, job *Job) Result {
	var res Result

	// a stale log from an earlier run must never be parsed as fresh
	_ = os.Remove(job.LogPath)

	cancel := func() {}
	if job.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
	}
	defer cancel()

	var cmd *exec.Cmd
	if job.UseWine {
		args := append([]string{job.Binary}, job.Args()...)
		cmd = exec.CommandContext(ctx, "wine", args...)
		if job.WinePrefix != "" {
			cmd.Env = append(os.Environ(), "WINEPREFIX="+job.WinePrefix)
		}
	} else {
		cmd = exec.CommandContext(ctx, job.Binary, job.Args()...)
	}
	// graceful stop first, SIGKILL after the grace window
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = o.KillGrace

	if err := cmd.Start(); err != nil {
		res.LaunchErr = err
		res.LaunchKind = classifyLaunch(err)
		return res
	}

	// a non-zero exit is normal: the compiler reports findings through
	// the log, not the exit code
	_ = cmd.Wait()
	res.TimedOut = errors.Is(ctx.Err(), context.DeadlineExceeded)

	log, ok := o.pollLog(ctx, job.LogPath)
	if !ok {
		// no log after the retry budget: the most likely cause is the
		// launch itself silently failing (wrong binary, broken prefix)
		return res
	}
	res.Success = true
	res.Log = log
	return res
}

// pollLog waits for the log file with bounded retries and fixed backoff.
func (o *Orchestrator) pollLog(ctx context.Context, path string) ([]byte, bool) {
	for i := 0; i < o.LogRetries; i++ {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			return data, true
		}
		select {
		case <-time.After(o.LogBackoff):
		case <-ctx.Done():
			// one last look; the compiler may have flushed on its
			// way down
			if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
				return data, true
			}
			return nil, false
		}
	}
	return nil, false
}

func classifyLaunch(err error) LaunchKind {
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return LaunchNotFound
	case errors.Is(err, os.ErrPermission):
		return LaunchPermission
	default:
		return LaunchOther
	}
}
