// Package config loads mqcheck.toml, the per-workspace description of
// where the compilers live and how checks should behave.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"mqcheck/internal/includes"
)

// ManifestName is the config file discovered by walking up from the
// start directory, like a build manifest.
const ManifestName = "mqcheck.toml"

// FlavorConfig describes one compiler dialect installation.
type FlavorConfig struct {
	// Compiler is the metaeditor executable path.
	Compiler string `toml:"compiler"`
	// Include is the optional /inc: directory.
	Include string `toml:"include"`
	// Portable adds /portable to the invocation.
	Portable bool `toml:"portable"`
	// Wine runs the (Windows) compiler through the compatibility shim.
	Wine bool `toml:"wine"`
	// WinePrefix selects an isolated wine profile.
	WinePrefix string `toml:"wine_prefix"`
	// TimeoutSeconds bounds shimmed runs; 0 uses the default.
	TimeoutSeconds int64 `toml:"timeout_seconds"`
}

// CheckConfig tunes the check pipeline.
type CheckConfig struct {
	DebounceMS   int64 `toml:"debounce_ms"`
	LogRetries   int64 `toml:"log_retries"`
	LogBackoffMS int64 `toml:"log_backoff_ms"`
	MaxFiles     int64 `toml:"max_files"`
}

// TargetsConfig selects the mapping store and extra include roots.
type TargetsConfig struct {
	// Store is one of session, user, workspace.
	Store string `toml:"store"`
	// IncludeRoot is an externally configured include root, on top of
	// the workspace's own Include directory.
	IncludeRoot string `toml:"include_root"`
}

// Config is the decoded mqcheck.toml plus its location.
type Config struct {
	MQL4    *FlavorConfig `toml:"mql4"`
	MQL5    *FlavorConfig `toml:"mql5"`
	Check   CheckConfig   `toml:"check"`
	Targets TargetsConfig `toml:"targets"`

	// Path and Root record where the manifest was found.
	Path string `toml:"-"`
	Root string `toml:"-"`
}

const (
	defaultDebounce   = 500 * time.Millisecond
	defaultTimeout    = 60 * time.Second
	defaultLogRetries = 10
	defaultLogBackoff = 200 * time.Millisecond
	defaultMaxFiles   = 10000
)

// Find walks up from startDir to locate mqcheck.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes and validates the manifest at path.
func Load(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("mql4") && !meta.IsDefined("mql5") {
		return nil, fmt.Errorf("%s: missing [mql4] and [mql5]; at least one compiler section is required", path)
	}
	if meta.IsDefined("mql4") && cfg.MQL4.Compiler == "" {
		return nil, fmt.Errorf("%s: missing [mql4].compiler", path)
	}
	if meta.IsDefined("mql5") && cfg.MQL5.Compiler == "" {
		return nil, fmt.Errorf("%s: missing [mql5].compiler", path)
	}
	switch cfg.Targets.Store {
	case "", "session", "user", "workspace":
	default:
		return nil, fmt.Errorf("%s: [targets].store must be session, user or workspace", path)
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	return &cfg, nil
}

// Discover finds and loads the manifest governing startDir.
func Discover(startDir string) (*Config, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// Flavor returns the section for the given dialect, or an error the
// coordinator treats as a per-target configuration failure.
func (c *Config) Flavor(f includes.Flavor) (*FlavorConfig, error) {
	var fc *FlavorConfig
	switch f {
	case includes.FlavorMQL4:
		fc = c.MQL4
	case includes.FlavorMQL5:
		fc = c.MQL5
	}
	if fc == nil {
		return nil, fmt.Errorf("no [%s] section in %s", f, c.Path)
	}
	return fc, nil
}

// IncludeRoots lists the directories angled includes resolve against.
func (c *Config) IncludeRoots() []string {
	roots := []string{filepath.Join(c.Root, "Include")}
	if c.Targets.IncludeRoot != "" {
		roots = append(roots, c.Targets.IncludeRoot)
	}
	return roots
}

func (c *Config) Debounce() time.Duration {
	if c.Check.DebounceMS <= 0 {
		return defaultDebounce
	}
	return time.Duration(c.Check.DebounceMS) * time.Millisecond
}

func (c *Config) LogBackoff() time.Duration {
	if c.Check.LogBackoffMS <= 0 {
		return defaultLogBackoff
	}
	return time.Duration(c.Check.LogBackoffMS) * time.Millisecond
}

func (c *Config) LogRetries() int {
	if c.Check.LogRetries <= 0 {
		return defaultLogRetries
	}
	n, err := safecast.Conv[int](c.Check.LogRetries)
	if err != nil {
		return defaultLogRetries
	}
	return n
}

func (c *Config) MaxFiles() int {
	if c.Check.MaxFiles <= 0 {
		return defaultMaxFiles
	}
	n, err := safecast.Conv[int](c.Check.MaxFiles)
	if err != nil {
		return defaultMaxFiles
	}
	return n
}

func (fc *FlavorConfig) Timeout() time.Duration {
	if fc.TimeoutSeconds <= 0 {
		return defaultTimeout
	}
	return time.Duration(fc.TimeoutSeconds) * time.Second
}
