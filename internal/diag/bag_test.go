package diag_test

import (
	"testing"

	"mqcheck/internal/diag"
)

func TestBag_HasErrors(t *testing.T) {
	b := diag.NewBag(4)
	b.Add(diag.Diagnostic{File: "a.mqh", Severity: diag.SevWarning})
	if b.HasErrors() {
		t.Fatal("warning-only bag must not report errors")
	}
	b.Add(diag.Diagnostic{File: "a.mqh", Severity: diag.SevError})
	if !b.HasErrors() {
		t.Fatal("expected HasErrors after adding an error")
	}
}

func TestBag_ReplaceFile(t *testing.T) {
	b := diag.NewBag(4)
	b.Add(diag.Diagnostic{File: "a.mqh", Message: "old"})
	b.Add(diag.Diagnostic{File: "b.mqh", Message: "keep"})
	b.ReplaceFile("a.mqh", []diag.Diagnostic{{File: "a.mqh", Message: "new"}})

	byFile := b.ByFile()
	if len(byFile["a.mqh"]) != 1 || byFile["a.mqh"][0].Message != "new" {
		t.Fatalf("expected a.mqh fully replaced, got %+v", byFile["a.mqh"])
	}
	if len(byFile["b.mqh"]) != 1 || byFile["b.mqh"][0].Message != "keep" {
		t.Fatal("unrelated file must survive ReplaceFile")
	}
}

func TestBag_SortStable(t *testing.T) {
	b := diag.NewBag(4)
	b.Add(diag.Diagnostic{File: "b.mq5", Pos: diag.Position{Line: 1}})
	b.Add(diag.Diagnostic{File: "a.mq5", Pos: diag.Position{Line: 9}})
	b.Add(diag.Diagnostic{File: "a.mq5", Pos: diag.Position{Line: 2}, Severity: diag.SevWarning})
	b.Add(diag.Diagnostic{File: "a.mq5", Pos: diag.Position{Line: 2}, Severity: diag.SevError})
	b.Sort()

	items := b.Items()
	if items[0].File != "a.mq5" || items[0].Pos.Line != 2 || items[0].Severity != diag.SevError {
		t.Fatalf("expected error at a.mq5:2 first, got %+v", items[0])
	}
	if items[1].Severity != diag.SevWarning {
		t.Fatalf("expected warning second, got %+v", items[1])
	}
	if items[3].File != "b.mq5" {
		t.Fatalf("expected b.mq5 last, got %+v", items[3])
	}
}
