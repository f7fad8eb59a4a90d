package targets

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when userPayload format changes
const userStoreSchemaVersion uint16 = 1

type userPayload struct {
	Schema   uint16
	Mappings map[string][]string
}

// UserStore persists mappings per workspace in the user's state directory.
// Reads and writes go straight to disk; the caller's single-flight
// coordination makes the read-modify-write safe without a file lock.
type UserStore struct {
	path string
}

// OpenUserStore returns the store for the given workspace root, keyed by
// a digest of the root path so unrelated workspaces never collide.
func OpenUserStore(app, workspaceRoot string) (*UserStore, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(workspaceRoot))
	name := "targets-" + hex.EncodeToString(sum[:8]) + ".mp"
	return &UserStore{path: filepath.Join(dir, name)}, nil
}

func (s *UserStore) Get(header string) ([]string, bool, error) {
	payload, err := s.load()
	if err != nil {
		return nil, false, err
	}
	roots, ok := payload.Mappings[header]
	return roots, ok, nil
}

func (s *UserStore) Set(header string, roots []string) error {
	payload, err := s.load()
	if err != nil {
		return err
	}
	payload.Mappings[header] = roots
	return s.save(payload)
}

func (s *UserStore) Delete(header string) error {
	payload, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := payload.Mappings[header]; !ok {
		return nil
	}
	delete(payload.Mappings, header)
	return s.save(payload)
}

func (s *UserStore) All() (map[string][]string, error) {
	payload, err := s.load()
	if err != nil {
		return nil, err
	}
	return payload.Mappings, nil
}

func (s *UserStore) load() (*userPayload, error) {
	empty := &userPayload{
		Schema:   userStoreSchemaVersion,
		Mappings: make(map[string][]string),
	}
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return empty, nil
		}
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	var payload userPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, fmt.Errorf("corrupt target store %s: %w", s.path, err)
	}
	if payload.Schema != userStoreSchemaVersion {
		// stale schema: start over rather than misread old data
		return empty, nil
	}
	if payload.Mappings == nil {
		payload.Mappings = make(map[string][]string)
	}
	return &payload, nil
}

func (s *UserStore) save(payload *userPayload) error {
	f, err := os.CreateTemp(filepath.Dir(s.path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), s.path)
}
