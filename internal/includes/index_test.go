package includes_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mqcheck/internal/includes"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// fixture:
//
//	Experts/EA.mq5       includes "..\Include\Shared.mqh"
//	Scripts/Tool.mq5     includes <Shared.mqh>
//	Include/Shared.mqh   includes "Deep.mqh"
//	Include/Deep.mqh
func buildFixture(t *testing.T) (string, *includes.Index) {
	t.Helper()
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, "Experts", "EA.mq5"), "#include \"..\\Include\\Shared.mqh\"\n")
	writeFile(t, filepath.Join(ws, "Scripts", "Tool.mq5"), "#include <Shared.mqh>\n")
	writeFile(t, filepath.Join(ws, "Include", "Shared.mqh"), "#include \"Deep.mqh\"\n")
	writeFile(t, filepath.Join(ws, "Include", "Deep.mqh"), "// leaf\n")
	ix := includes.New([]string{ws}, []string{filepath.Join(ws, "Include")}, 0, nil)
	return ws, ix
}

func TestIndex_ReverseEdges(t *testing.T) {
	ws, ix := buildFixture(t)

	incs, err := ix.Includers(context.Background(), filepath.Join(ws, "Include", "Shared.mqh"))
	if err != nil {
		t.Fatal(err)
	}
	if len(incs) != 2 {
		t.Fatalf("expected 2 includers of Shared.mqh, got %v", incs)
	}
	want1 := includes.NormPath(filepath.Join(ws, "Experts", "EA.mq5"))
	want2 := includes.NormPath(filepath.Join(ws, "Scripts", "Tool.mq5"))
	if incs[0] != want1 && incs[1] != want1 {
		t.Fatalf("EA.mq5 missing from includers: %v", incs)
	}
	if incs[0] != want2 && incs[1] != want2 {
		t.Fatalf("Tool.mq5 missing from includers: %v", incs)
	}

	deep, err := ix.Includers(context.Background(), filepath.Join(ws, "Include", "Deep.mqh"))
	if err != nil {
		t.Fatal(err)
	}
	if len(deep) != 1 || deep[0] != includes.NormPath(filepath.Join(ws, "Include", "Shared.mqh")) {
		t.Fatalf("expected only Shared.mqh to include Deep.mqh, got %v", deep)
	}
}

func TestIndex_DirtyRebuild(t *testing.T) {
	ws, ix := buildFixture(t)
	header := filepath.Join(ws, "Include", "Shared.mqh")

	if _, err := ix.Includers(context.Background(), header); err != nil {
		t.Fatal(err)
	}

	// a new root appears; without MarkDirty the cached index is served
	writeFile(t, filepath.Join(ws, "Experts", "New.mq5"), "#include <Shared.mqh>\n")
	incs, err := ix.Includers(context.Background(), header)
	if err != nil {
		t.Fatal(err)
	}
	if len(incs) != 2 {
		t.Fatalf("stale lookup expected 2 includers, got %v", incs)
	}

	ix.MarkDirty()
	incs, err = ix.Includers(context.Background(), header)
	if err != nil {
		t.Fatal(err)
	}
	if len(incs) != 3 {
		t.Fatalf("after rebuild expected 3 includers, got %v", incs)
	}
}

func TestIndex_UnknownFileHasNoIncluders(t *testing.T) {
	ws, ix := buildFixture(t)
	incs, err := ix.Includers(context.Background(), filepath.Join(ws, "Include", "Ghost.mqh"))
	if err != nil {
		t.Fatal(err)
	}
	if incs != nil {
		t.Fatalf("expected nil includers, got %v", incs)
	}
}

func TestIndex_MaxFilesCapsScan(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, "a.mq5"), "#include \"h.mqh\"\n")
	writeFile(t, filepath.Join(ws, "h.mqh"), "\n")
	ix := includes.New([]string{ws}, nil, 1, nil)
	// only one file scanned; the index still answers without failing
	if _, err := ix.Includers(context.Background(), filepath.Join(ws, "h.mqh")); err != nil {
		t.Fatal(err)
	}
}
