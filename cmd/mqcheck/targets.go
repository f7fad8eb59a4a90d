package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"mqcheck/internal/config"
	"mqcheck/internal/targets"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Inspect and edit the persisted header-to-root mapping",
}

var targetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every persisted mapping",
	Args:  cobra.NoArgs,
	RunE:  runTargetsList,
}

var targetsSetCmd = &cobra.Command{
	Use:   "set <header.mqh> <root.mq4|root.mq5>...",
	Short: "Pin the compile target(s) for a header",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTargetsSet,
}

var targetsClearCmd = &cobra.Command{
	Use:   "clear [header.mqh]",
	Short: "Forget the mapping for a header, or every mapping with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTargetsClear,
}

func init() {
	targetsClearCmd.Flags().Bool("all", false, "clear every persisted mapping")
	targetsCmd.AddCommand(targetsListCmd)
	targetsCmd.AddCommand(targetsSetCmd)
	targetsCmd.AddCommand(targetsClearCmd)
}

// openTargetsStore is the lightweight wiring for mapping maintenance:
// manifest plus store, no compile pipeline.
func openTargetsStore() (*config.Config, targets.Store, error) {
	cfg, ok, err := config.Discover(".")
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("no %s found from the current directory upward", config.ManifestName)
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

// workspaceKey turns a path argument into the store's relative slash key.
func workspaceKey(root, arg string) (string, error) {
	p := arg
	if !filepath.IsAbs(p) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", err
		}
		p = abs
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside the workspace %s", arg, root)
	}
	return filepath.ToSlash(rel), nil
}

func runTargetsList(cmd *cobra.Command, args []string) error {
	_, store, err := openTargetsStore()
	if err != nil {
		return err
	}
	all, err := store.All()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(os.Stdout, "no persisted mappings")
		return nil
	}
	headers := make([]string, 0, len(all))
	for h := range all {
		headers = append(headers, h)
	}
	sort.Strings(headers)
	for _, h := range headers {
		fmt.Fprintf(os.Stdout, "%s -> %s\n", h, strings.Join(all[h], ", "))
	}
	return nil
}

func runTargetsSet(cmd *cobra.Command, args []string) error {
	cfg, store, err := openTargetsStore()
	if err != nil {
		return err
	}
	key, err := workspaceKey(cfg.Root, args[0])
	if err != nil {
		return err
	}
	roots := make([]string, 0, len(args)-1)
	for _, arg := range args[1:] {
		rel, err := workspaceKey(cfg.Root, arg)
		if err != nil {
			return err
		}
		if _, err := os.Stat(filepath.Join(cfg.Root, filepath.FromSlash(rel))); err != nil {
			return fmt.Errorf("target does not exist: %s", arg)
		}
		roots = append(roots, rel)
	}
	if err := store.Set(key, roots); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s -> %s\n", key, strings.Join(roots, ", "))
	return nil
}

func runTargetsClear(cmd *cobra.Command, args []string) error {
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	if all == (len(args) == 1) {
		return fmt.Errorf("pass either a header or --all")
	}
	cfg, store, err := openTargetsStore()
	if err != nil {
		return err
	}
	if all {
		mappings, err := store.All()
		if err != nil {
			return err
		}
		for h := range mappings {
			if err := store.Delete(h); err != nil {
				return err
			}
		}
		fmt.Fprintf(os.Stdout, "cleared %d mapping(s)\n", len(mappings))
		return nil
	}
	key, err := workspaceKey(cfg.Root, args[0])
	if err != nil {
		return err
	}
	if err := store.Delete(key); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "cleared %s\n", key)
	return nil
}
