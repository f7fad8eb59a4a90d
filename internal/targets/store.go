// Package targets resolves which root file to compile for a given header
// and persists the learned header→roots mapping.
package targets

import "sync"

// Store persists the mapping from a normalized relative header path to an
// ordered list of relative root paths. Implementations: session (memory),
// user (msgpack under the XDG state dir), workspace (committed TOML).
type Store interface {
	Get(header string) ([]string, bool, error)
	Set(header string, roots []string) error
	Delete(header string) error
	// All snapshots every mapping, for listing and bulk maintenance.
	All() (map[string][]string, error)
}

// MemoryStore keeps mappings for the lifetime of the process.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string][]string)}
}

func (s *MemoryStore) Get(header string) ([]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roots, ok := s.m[header]
	if !ok {
		return nil, false, nil
	}
	out := make([]string, len(roots))
	copy(out, roots)
	return out, true, nil
}

func (s *MemoryStore) Set(header string, roots []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]string, len(roots))
	copy(cp, roots)
	s.m[header] = cp
	return nil
}

func (s *MemoryStore) Delete(header string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, header)
	return nil
}

func (s *MemoryStore) All() (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]string, len(s.m))
	for k, v := range s.m {
		cp := make([]string, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out, nil
}
