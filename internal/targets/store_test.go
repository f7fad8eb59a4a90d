package targets_test

import (
	"os"
	"path/filepath"
	"testing"

	"mqcheck/internal/targets"
)

func testStoreContract(t *testing.T, s targets.Store) {
	t.Helper()
	if _, ok, err := s.Get("Include/A.mqh"); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}
	if err := s.Set("Include/A.mqh", []string{"Experts/EA.mq5", "Scripts/S.mq5"}); err != nil {
		t.Fatal(err)
	}
	all, err := s.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || len(all["Include/A.mqh"]) != 2 {
		t.Fatalf("All snapshot wrong: %v", all)
	}
	roots, ok, err := s.Get("Include/A.mqh")
	if err != nil || !ok {
		t.Fatalf("after set: ok=%v err=%v", ok, err)
	}
	if len(roots) != 2 || roots[0] != "Experts/EA.mq5" || roots[1] != "Scripts/S.mq5" {
		t.Fatalf("order must be preserved: %v", roots)
	}
	if err := s.Delete("Include/A.mqh"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get("Include/A.mqh"); ok {
		t.Fatal("entry must be gone after delete")
	}
	// deleting a missing key is not an error
	if err := s.Delete("Include/A.mqh"); err != nil {
		t.Fatal(err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, targets.NewMemoryStore())
}

func TestUserStore(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	s, err := targets.OpenUserStore("mqcheck-test", "/tmp/some/workspace")
	if err != nil {
		t.Fatal(err)
	}
	testStoreContract(t, s)
}

func TestUserStore_SurvivesReopen(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	s, err := targets.OpenUserStore("mqcheck-test", "/ws")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("Include/B.mqh", []string{"Experts/B.mq5"}); err != nil {
		t.Fatal(err)
	}
	s2, err := targets.OpenUserStore("mqcheck-test", "/ws")
	if err != nil {
		t.Fatal(err)
	}
	roots, ok, err := s2.Get("Include/B.mqh")
	if err != nil || !ok || len(roots) != 1 || roots[0] != "Experts/B.mq5" {
		t.Fatalf("reopened store lost data: %v ok=%v err=%v", roots, ok, err)
	}
}

func TestUserStore_SeparateWorkspaces(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	a, err := targets.OpenUserStore("mqcheck-test", "/ws/a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := targets.OpenUserStore("mqcheck-test", "/ws/b")
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Set("Include/X.mqh", []string{"Experts/X.mq5"}); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := b.Get("Include/X.mqh"); ok {
		t.Fatal("workspaces must not share mappings")
	}
}

func TestWorkspaceStore(t *testing.T) {
	testStoreContract(t, targets.NewWorkspaceStore(t.TempDir()))
}

func TestWorkspaceStore_FileAtWorkspaceRoot(t *testing.T) {
	ws := t.TempDir()
	s := targets.NewWorkspaceStore(ws)
	if err := s.Set("Include/C.mqh", []string{"Experts/C.mq5"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(ws, targets.WorkspaceStoreName)); err != nil {
		t.Fatalf("expected committed mapping file: %v", err)
	}
}
