// Package includes builds the reverse include graph of an MQL source tree:
// for every included file, the set of files that directly include it.
package includes

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

const scanConcurrency = 8

// Index is the cached reverse include graph for one workspace.
// It is built lazily on first use and rebuilt after MarkDirty.
type Index struct {
	roots        []string
	includeRoots []string
	maxFiles     int
	warn         io.Writer

	mu      sync.Mutex
	reverse map[string]map[string]struct{}
	built   bool
	dirty   bool
}

// New creates an index over the given scan roots. includeRoots are the
// directories angled includes resolve against (workspace Include root
// plus any externally configured one). maxFiles caps the scan.
func New(roots, includeRoots []string, maxFiles int, warn io.Writer) *Index {
	if warn == nil {
		warn = io.Discard
	}
	return &Index{
		roots:        roots,
		includeRoots: includeRoots,
		maxFiles:     maxFiles,
		warn:         warn,
	}
}

// MarkDirty schedules a rebuild on the next lookup. Called on file
// create/change/delete; the rebuild itself stays lazy.
func (ix *Index) MarkDirty() {
	ix.mu.Lock()
	ix.dirty = true
	ix.mu.Unlock()
}

// Includers returns the sorted set of files that directly include path.
func (ix *Index) Includers(ctx context.Context, path string) ([]string, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.ensureBuiltLocked(ctx); err != nil {
		return nil, err
	}
	set := ix.reverse[NormPath(path)]
	if len(set) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (ix *Index) ensureBuiltLocked(ctx context.Context) error {
	if ix.built && !ix.dirty {
		return nil
	}
	reverse, err := ix.scan(ctx)
	if err != nil {
		return err
	}
	ix.reverse = reverse
	ix.built = true
	ix.dirty = false
	return nil
}

// scan walks the roots and builds the reverse multimap. Unreadable files
// are skipped with a note; a partial index is still usable. The only hard
// failure is context cancellation.
func (ix *Index) scan(ctx context.Context) (map[string]map[string]struct{}, error) {
	files := ix.collectFiles()

	reverse := make(map[string]map[string]struct{})
	var reverseMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				fmt.Fprintf(ix.warn, "mqcheck: skipping unreadable %s: %v\n", file, err)
				return nil
			}
			includer := NormPath(file)
			for _, d := range ExtractIncludes(string(data)) {
				for _, candidate := range ix.resolve(file, d) {
					reverseMu.Lock()
					set := reverse[candidate]
					if set == nil {
						set = make(map[string]struct{})
						reverse[candidate] = set
					}
					set[includer] = struct{}{}
					reverseMu.Unlock()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reverse, nil
}

func (ix *Index) collectFiles() []string {
	var files []string
	for _, root := range ix.roots {
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				fmt.Fprintf(ix.warn, "mqcheck: skipping %s: %v\n", path, err)
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if KindOf(path) == KindOther {
				return nil
			}
			if ix.maxFiles > 0 && len(files) >= ix.maxFiles {
				return fs.SkipAll
			}
			files = append(files, path)
			return nil
		})
		if walkErr != nil {
			fmt.Fprintf(ix.warn, "mqcheck: scan of %s incomplete: %v\n", root, walkErr)
		}
	}
	return files
}

// resolve expands a directive into the absolute candidates that exist on
// disk. Quoted includes try the including file's directory first, then
// the include roots; angled includes skip the directory-relative form.
func (ix *Index) resolve(includer string, d Directive) []string {
	raw := filepath.FromSlash(strings.ReplaceAll(d.Raw, `\`, "/"))
	var candidates []string
	if !d.Angled {
		candidates = append(candidates, filepath.Join(filepath.Dir(includer), raw))
	}
	for _, root := range ix.includeRoots {
		candidates = append(candidates, filepath.Join(root, raw))
	}
	var out []string
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			out = append(out, NormPath(c))
		}
	}
	return out
}

// NormPath is the canonical form used as index and mapping key:
// absolute, cleaned, forward slashes.
func NormPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = filepath.Clean(p)
	}
	return filepath.ToSlash(abs)
}
