package targets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// WorkspaceStoreName is the mapping file kept at the workspace root so the
// header→roots mapping can be committed alongside the sources.
const WorkspaceStoreName = "mqcheck-targets.toml"

type workspaceDoc struct {
	Targets map[string][]string `toml:"targets"`
}

// WorkspaceStore persists mappings in a TOML file at the workspace root.
type WorkspaceStore struct {
	path string
}

func NewWorkspaceStore(workspaceRoot string) *WorkspaceStore {
	return &WorkspaceStore{path: filepath.Join(workspaceRoot, WorkspaceStoreName)}
}

func (s *WorkspaceStore) Get(header string) ([]string, bool, error) {
	doc, err := s.load()
	if err != nil {
		return nil, false, err
	}
	roots, ok := doc.Targets[header]
	return roots, ok, nil
}

func (s *WorkspaceStore) Set(header string, roots []string) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Targets[header] = roots
	return s.save(doc)
}

func (s *WorkspaceStore) Delete(header string) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Targets[header]; !ok {
		return nil
	}
	delete(doc.Targets, header)
	return s.save(doc)
}

func (s *WorkspaceStore) All() (map[string][]string, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Targets, nil
}

func (s *WorkspaceStore) load() (*workspaceDoc, error) {
	doc := &workspaceDoc{Targets: make(map[string][]string)}
	if _, err := toml.DecodeFile(s.path, doc); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", s.path, err)
	}
	if doc.Targets == nil {
		doc.Targets = make(map[string][]string)
	}
	return doc, nil
}

func (s *WorkspaceStore) save(doc *workspaceDoc) error {
	f, err := os.CreateTemp(filepath.Dir(s.path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()
	if err := toml.NewEncoder(f).Encode(doc); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), s.path)
}
