package targets

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"mqcheck/internal/includes"
)

// ErrAmbiguous reports multiple candidate roots in a non-interactive
// context. The caller must skip the header, never guess.
var ErrAmbiguous = errors.New("multiple candidate compile targets")

// mainHintRe matches the in-file fallback marker naming a header's root,
// e.g. `// mqcheck:main Experts/MyEA.mq5`.
var mainHintRe = regexp.MustCompile(`^\s*//\s*mqcheck:main\s+(\S+)`)

const mainHintScanLines = 50

// Resolver determines the compile target(s) for a header using the
// reverse include graph plus the persisted mapping.
type Resolver struct {
	Index *includes.Index
	Store Store
	// Picker handles the cases the graph cannot decide. Required;
	// batch contexts use AutoFailPicker.
	Picker Picker
	// Root is the workspace root mapping keys are relative to.
	Root string
	// Interactive enables prompting and auto-persisting. When false,
	// zero candidates resolve to nothing and several candidates to
	// ErrAmbiguous.
	Interactive bool
}

// CandidateMains walks the reverse include graph breadth-first from
// header: root-kind includers are collected, header-kind includers are
// expanded further. The result is sorted for determinism.
func (r *Resolver) CandidateMains(ctx context.Context, header string) ([]string, error) {
	start := includes.NormPath(header)
	visited := map[string]bool{start: true}
	queue := []string{start}
	found := map[string]bool{}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		incs, err := r.Index.Includers(ctx, cur)
		if err != nil {
			return nil, err
		}
		for _, inc := range incs {
			if visited[inc] {
				continue
			}
			visited[inc] = true
			switch includes.KindOf(inc) {
			case includes.KindRoot:
				found[inc] = true
			case includes.KindHeader:
				queue = append(queue, inc)
			}
		}
	}
	out := make([]string, 0, len(found))
	for p := range found {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// Resolve returns the absolute compile targets for header.
//
// The persisted mapping wins when any of its entries still exist on disk;
// otherwise the include graph is consulted. With no candidate the in-file
// main hint is tried, then the picker. With several candidates the picker
// decides interactively or ErrAmbiguous is returned. An empty result with
// a nil error means the caller should skip the header with a warning.
func (r *Resolver) Resolve(ctx context.Context, header string) ([]string, error) {
	key, err := r.mappingKey(header)
	if err != nil {
		return nil, err
	}

	stored, ok, err := r.Store.Get(key)
	if err != nil {
		return nil, err
	}
	if ok {
		alive := r.existingRoots(stored)
		if len(alive) > 0 {
			return alive, nil
		}
		// every recorded target is gone: forget the entry and re-infer
		if err := r.Store.Delete(key); err != nil {
			return nil, err
		}
	}

	candidates, err := r.CandidateMains(ctx, header)
	if err != nil {
		return nil, err
	}

	switch len(candidates) {
	case 0:
		if hinted, ok := r.mainHint(header); ok {
			return []string{hinted}, nil
		}
		if !r.Interactive {
			return nil, nil
		}
		picked, err := r.Picker.Pick(key, nil)
		if errors.Is(err, ErrPickCancelled) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		resolved := r.existingRoots(r.relativize(picked))
		if len(resolved) == 0 {
			return nil, fmt.Errorf("picked target does not exist: %s", strings.Join(picked, ", "))
		}
		if err := r.persist(key, resolved); err != nil {
			return nil, err
		}
		return resolved, nil
	case 1:
		if r.Interactive {
			if err := r.persist(key, candidates); err != nil {
				return nil, err
			}
		}
		return candidates, nil
	default:
		if !r.Interactive {
			return nil, ErrAmbiguous
		}
		picked, err := r.Picker.Pick(key, candidates)
		if errors.Is(err, ErrPickCancelled) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if err := r.persist(key, picked); err != nil {
			return nil, err
		}
		return picked, nil
	}
}

// mainHint scans the top of the header for the main-hint marker and
// resolves it against the header's directory, then the workspace root.
func (r *Resolver) mainHint(header string) (string, bool) {
	f, err := os.Open(header)
	if err != nil {
		return "", false
	}
	defer func() {
		_ = f.Close()
	}()
	scanner := bufio.NewScanner(f)
	for i := 0; scanner.Scan() && i < mainHintScanLines; i++ {
		m := mainHintRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		rel := filepath.FromSlash(strings.ReplaceAll(m[1], `\`, "/"))
		for _, base := range []string{filepath.Dir(header), r.Root} {
			candidate := filepath.Join(base, rel)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return includes.NormPath(candidate), true
			}
		}
	}
	return "", false
}

func (r *Resolver) mappingKey(header string) (string, error) {
	rel, err := filepath.Rel(r.Root, includes.NormPath(header))
	if err != nil {
		return "", fmt.Errorf("header %s outside workspace %s: %w", header, r.Root, err)
	}
	return filepath.ToSlash(rel), nil
}

// existingRoots maps stored relative roots to absolute paths, dropping
// entries whose files no longer exist. Stale entries are never trusted.
func (r *Resolver) existingRoots(rels []string) []string {
	var out []string
	for _, rel := range rels {
		abs := filepath.Join(r.Root, filepath.FromSlash(rel))
		if filepath.IsAbs(rel) {
			abs = rel
		}
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			out = append(out, includes.NormPath(abs))
		}
	}
	return out
}

func (r *Resolver) relativize(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if rel, err := filepath.Rel(r.Root, includes.NormPath(p)); err == nil && !strings.HasPrefix(rel, "..") {
			out = append(out, filepath.ToSlash(rel))
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *Resolver) persist(key string, roots []string) error {
	return r.Store.Set(key, r.relativize(roots))
}
