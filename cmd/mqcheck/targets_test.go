package main

import (
	"path/filepath"
	"testing"
)

func TestWorkspaceKey(t *testing.T) {
	root := t.TempDir()

	key, err := workspaceKey(root, filepath.Join(root, "Include", "A.mqh"))
	if err != nil {
		t.Fatal(err)
	}
	if key != "Include/A.mqh" {
		t.Fatalf("expected slash-relative key, got %q", key)
	}

	if _, err := workspaceKey(root, filepath.Join(root, "..", "elsewhere.mqh")); err == nil {
		t.Fatal("paths outside the workspace must be rejected")
	}
}
