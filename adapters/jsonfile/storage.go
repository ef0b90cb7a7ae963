package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"promptkit/core"
)

// Store persists every key to a single JSON object file.
// Suitable for a single app installation on local disk.
//
// Writes re-read the file under an exclusive lock on <path>.lock and merge
// the one key, so handles in other goroutines or processes sharing the file
// never lose each other's keys.
type Store struct {
	path string
	lock *flock.Flock
	mu   sync.Mutex
	// last state seen on disk
	data map[string]uint64
}

// New opens the file at path. A missing file is an empty store; the file and
// its directory are created on the first write.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("jsonfile: empty path")
	}
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("jsonfile: load %s: %w", path, err)
	}
	return &Store{path: path, lock: flock.New(path + ".lock"), data: data}, nil
}

func readFile(path string) (map[string]uint64, error) {
	data := map[string]uint64{}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func writeFile(path string, data map[string]uint64) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *Store) ReadInt(_ context.Context, key string) (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// WriteInt merges key into the current file contents. On failure the file
// and the cached state are left as they were.
func (s *Store) WriteInt(_ context.Context, key string, value uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("jsonfile: write %s: %w", key, err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("jsonfile: lock %s: %w", s.path, err)
	}
	defer func() { _ = s.lock.Unlock() }()

	current, err := readFile(s.path)
	if err != nil {
		return fmt.Errorf("jsonfile: reload %s: %w", s.path, err)
	}
	current[key] = value
	if err := writeFile(s.path, current); err != nil {
		return fmt.Errorf("jsonfile: write %s: %w", key, err)
	}
	s.data = current
	return nil
}

// Close is a no-op; every write is already on disk.
func (s *Store) Close() error { return nil }

var _ core.Storage = (*Store)(nil)
