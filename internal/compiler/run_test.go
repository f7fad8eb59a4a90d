package compiler_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"mqcheck/internal/compiler"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler scripts are POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-metaeditor")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func fastOrchestrator() *compiler.Orchestrator {
	o := compiler.New()
	o.LogRetries = 10
	o.LogBackoff = 50 * time.Millisecond
	o.KillGrace = 100 * time.Millisecond
	return o
}

func TestRun_LogWrittenAfterExit(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "compile.log")
	// the log lands asynchronously after the process is gone
	bin := writeScript(t, "( sleep 0.2; printf 'Result: 0 errors, 0 warnings' > "+logPath+" ) &\nexit 1\n")

	res := fastOrchestrator().Run(context.Background(), &compiler.Job{
		Binary:  bin,
		Target:  "EA.mq5",
		LogArg:  logPath,
		LogPath: logPath,
	})
	if res.LaunchErr != nil {
		t.Fatalf("unexpected launch error: %v", res.LaunchErr)
	}
	if !res.Success {
		t.Fatal("expected log to be found by polling")
	}
	if string(res.Log) != "Result: 0 errors, 0 warnings" {
		t.Fatalf("wrong log contents: %q", res.Log)
	}
}

func TestRun_MissingLogExhaustsRetries(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "compile.log")
	bin := writeScript(t, "exit 0\n")

	o := fastOrchestrator()
	o.LogRetries = 2
	res := o.Run(context.Background(), &compiler.Job{Binary: bin, Target: "x", LogArg: logPath, LogPath: logPath})
	if res.Success || res.Log != nil {
		t.Fatal("expected failure when the log never appears")
	}
	if res.LaunchErr != nil {
		t.Fatalf("launch itself was fine: %v", res.LaunchErr)
	}
}

func TestRun_LaunchNotFound(t *testing.T) {
	res := fastOrchestrator().Run(context.Background(), &compiler.Job{
		Binary:  "/nonexistent/metaeditor64.exe",
		Target:  "x",
		LogArg:  "x.log",
		LogPath: filepath.Join(t.TempDir(), "x.log"),
	})
	if res.LaunchErr == nil || res.LaunchKind != compiler.LaunchNotFound {
		t.Fatalf("expected not-found launch error, got kind=%v err=%v", res.LaunchKind, res.LaunchErr)
	}
	if res.Success {
		t.Fatal("launch failure cannot succeed")
	}
}

func TestRun_LaunchPermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are POSIX")
	}
	bin := filepath.Join(t.TempDir(), "not-executable")
	if err := os.WriteFile(bin, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	res := fastOrchestrator().Run(context.Background(), &compiler.Job{
		Binary:  bin,
		Target:  "x",
		LogArg:  "x.log",
		LogPath: filepath.Join(t.TempDir(), "x.log"),
	})
	if res.LaunchKind != compiler.LaunchPermission {
		t.Fatalf("expected permission kind, got %v (%v)", res.LaunchKind, res.LaunchErr)
	}
}

func TestRun_TimeoutKillsProcess(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "compile.log")
	bin := writeScript(t, "sleep 10\n")

	o := fastOrchestrator()
	o.LogRetries = 1
	start := time.Now()
	res := o.Run(context.Background(), &compiler.Job{
		Binary:  bin,
		Target:  "x",
		LogArg:  logPath,
		LogPath: logPath,
		Timeout: 150 * time.Millisecond,
	})
	if !res.TimedOut {
		t.Fatal("expected TimedOut")
	}
	if res.Success {
		t.Fatal("timed-out run without a log cannot succeed")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("kill took too long: %v", elapsed)
	}
}

func TestJob_Args(t *testing.T) {
	j := &compiler.Job{
		Target:     `Z:\ws\EA.mq5`,
		LogArg:     `Z:\ws\EA.log`,
		IncludeDir: `Z:\mt5\MQL5`,
		SyntaxOnly: true,
		Portable:   true,
	}
	got := j.Args()
	want := []string{`/compile:Z:\ws\EA.mq5`, `/log:Z:\ws\EA.log`, `/inc:Z:\mt5\MQL5`, "/s", "/portable"}
	if len(got) != len(want) {
		t.Fatalf("args mismatch: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("arg %d: got %q want %q", i, got[i], want[i])
		}
	}
}
