// Package storage provides the small client-local key/value capability the
// session lives in: an in-memory map for tests and a YAML file on disk.
package storage

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrCorrupt reports a session file that is not a YAML mapping of strings
var ErrCorrupt = errors.New("corrupt session file")

// KV is the get/set/remove capability injected into the session store.
// Set writes every pair or none of them.
type KV interface {
	Get(key string) (string, bool)
	Set(pairs map[string]string) error
	Remove(keys ...string) error
}

// MemoryStore is a KV held in memory
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value for key
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores all pairs
func (s *MemoryStore) Set(pairs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.values, pairs)
	return nil
}

// Remove deletes keys; missing keys are ignored
func (s *MemoryStore) Remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

// Len returns the number of stored keys
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// FileStore is a KV persisted as a flat YAML mapping. Every mutation
// rewrites the file through a temp file and rename, so readers never see
// a half-written session.
type FileStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// FileOption configures a FileStore
type FileOption func(*FileStore)

// WithLogger sets the logger used to report discarded content
func WithLogger(logger *zap.Logger) FileOption {
	return func(s *FileStore) { s.logger = logger }
}

// NewFileStore returns a store backed by path. The file is created lazily.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{path: filepath.Clean(path), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file
func (s *FileStore) Path() string { return s.path }

// Get returns the value for key; read errors count as missing
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

// Set stores all pairs in a single write. A corrupt file is replaced.
func (s *FileStore) Set(pairs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if errors.Is(err, ErrCorrupt) {
		s.logger.Warn("overwriting corrupt session file", zap.String("path", s.path), zap.Error(err))
		values, err = make(map[string]string), nil
	}
	if err != nil {
		return err
	}
	maps.Copy(values, pairs)
	return s.write(values)
}

// Remove deletes keys in a single write. Removing from a missing file is a
// no-op; a corrupt file is deleted.
func (s *FileStore) Remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if errors.Is(err, ErrCorrupt) {
		s.logger.Warn("deleting corrupt session file", zap.String("path", s.path), zap.Error(err))
		return s.removeFile()
	}
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	for _, k := range keys {
		delete(values, k)
	}
	if len(values) == 0 {
		return s.removeFile()
	}
	return s.write(values)
}

// removeFile deletes the backing file. Must be called with s.mu held.
func (s *FileStore) removeFile() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}

// read loads the mapping. Must be called with s.mu held.
func (s *FileStore) read() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrCorrupt, s.path, err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

// write replaces the file atomically. Must be called with s.mu held.
func (s *FileStore) write(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
