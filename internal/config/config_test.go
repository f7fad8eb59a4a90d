package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mqcheck/internal/config"
	"mqcheck/internal/includes"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, config.ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validManifest = `
[mql5]
compiler = "/opt/mt5/metaeditor64.exe"
include = "/opt/mt5/MQL5"
wine = true
wine_prefix = "/home/user/.mt5"
timeout_seconds = 30

[check]
debounce_ms = 250

[targets]
store = "workspace"
`

func TestLoad_Valid(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, validManifest)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Root != dir {
		t.Fatalf("wrong root: %s", cfg.Root)
	}
	fc, err := cfg.Flavor(includes.FlavorMQL5)
	if err != nil {
		t.Fatal(err)
	}
	if fc.Compiler != "/opt/mt5/metaeditor64.exe" || !fc.Wine {
		t.Fatalf("wrong flavor config: %+v", fc)
	}
	if fc.Timeout() != 30*time.Second {
		t.Fatalf("wrong timeout: %v", fc.Timeout())
	}
	if cfg.Debounce() != 250*time.Millisecond {
		t.Fatalf("wrong debounce: %v", cfg.Debounce())
	}
}

func TestLoad_MissingFlavorSectionFails(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[check]\ndebounce_ms = 1\n")
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected failure without any compiler section")
	}
}

func TestLoad_MissingCompilerPathFails(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[mql4]\nportable = true\n")
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected failure for [mql4] without compiler")
	}
}

func TestLoad_BadStoreFails(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, validManifest+"\n[targets2]\n")
	cfg, err := config.Load(path)
	if err != nil || cfg.Targets.Store != "workspace" {
		t.Fatalf("valid store rejected: %v", err)
	}
	bad := writeManifest(t, t.TempDir(), "[mql5]\ncompiler = \"x\"\n[targets]\nstore = \"cloud\"\n")
	if _, err := config.Load(bad); err == nil {
		t.Fatal("expected failure for unknown store")
	}
}

func TestFlavor_MissingSection(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, validManifest)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.Flavor(includes.FlavorMQL4); err == nil {
		t.Fatal("expected error for missing [mql4]")
	}
}

func TestFind_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, validManifest)
	nested := filepath.Join(root, "Experts", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, ok, err := config.Find(nested)
	if err != nil || !ok {
		t.Fatalf("expected to find manifest: ok=%v err=%v", ok, err)
	}
	if path != filepath.Join(root, config.ManifestName) {
		t.Fatalf("wrong path: %s", path)
	}
}

func TestDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[mql5]\ncompiler = \"x\"\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Debounce() <= 0 || cfg.LogRetries() <= 0 || cfg.LogBackoff() <= 0 || cfg.MaxFiles() <= 0 {
		t.Fatal("defaults must be positive")
	}
	if len(cfg.IncludeRoots()) != 1 {
		t.Fatalf("expected workspace Include root only, got %v", cfg.IncludeRoots())
	}
}
