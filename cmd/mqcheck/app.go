package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mqcheck/internal/checker"
	"mqcheck/internal/compiler"
	"mqcheck/internal/config"
	"mqcheck/internal/includes"
	"mqcheck/internal/targets"
	"mqcheck/internal/winepath"
)

// app holds the wiring shared by every command that compiles something:
// the discovered manifest, the include index, the mapping store and the
// coordinator on top of them.
type app struct {
	cfg   *config.Config
	index *includes.Index
	store targets.Store
	coord *checker.Coordinator
	warn  io.Writer
}

// openApp discovers mqcheck.toml upward from startDir and assembles the
// pipeline. interactive enables the terminal picker and auto-persisting
// of resolved mappings.
func openApp(cmd *cobra.Command, startDir string, interactive bool) (*app, error) {
	cfg, ok, err := config.Discover(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no %s found from %s upward", config.ManifestName, startDir)
	}

	var warn io.Writer = os.Stderr
	if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); quiet {
		warn = io.Discard
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	index := includes.New([]string{cfg.Root}, cfg.IncludeRoots(), cfg.MaxFiles(), warn)

	orch := compiler.New()
	orch.LogRetries = cfg.LogRetries()
	orch.LogBackoff = cfg.LogBackoff()

	var picker targets.Picker = targets.AutoFailPicker{}
	if interactive {
		picker = targets.TTYPicker{}
	}

	return &app{
		cfg:   cfg,
		index: index,
		store: store,
		warn:  warn,
		coord: &checker.Coordinator{
			Config: cfg,
			Resolver: &targets.Resolver{
				Index:       index,
				Store:       store,
				Picker:      picker,
				Root:        cfg.Root,
				Interactive: interactive,
			},
			Orchestrator: orch,
			Translator:   newTranslator(cfg),
			Warn:         warn,
		},
	}, nil
}

func openStore(cfg *config.Config) (targets.Store, error) {
	switch cfg.Targets.Store {
	case "session":
		return targets.NewMemoryStore(), nil
	case "workspace":
		return targets.NewWorkspaceStore(cfg.Root), nil
	default:
		// "user" and unset: mappings survive across runs without
		// touching the workspace tree
		return targets.OpenUserStore("mqcheck", cfg.Root)
	}
}

// newTranslator picks the wine profile from whichever flavor section is
// shimmed. With both shimmed they share one profile anyway in practice;
// the mql5 section wins.
func newTranslator(cfg *config.Config) *winepath.Translator {
	t := &winepath.Translator{}
	for _, fc := range []*config.FlavorConfig{cfg.MQL4, cfg.MQL5} {
		if fc != nil && fc.Wine && fc.WinePrefix != "" {
			t.Prefix = fc.WinePrefix
		}
	}
	return t
}

// absArg normalizes a positional path argument.
func absArg(arg string) (string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", arg, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", err
	}
	return abs, nil
}
