// Package storage provides the client's persistent key/value state store.
// It plays the role browser local storage plays for the web portal: a small
// set of string values (backend URL, demo flag, pending operation queue)
// under fixed keys that survive restarts.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Fixed storage keys used across the client.
const (
	KeyBackendURL = "backend_url"
	KeyDemoMode   = "demo_mode"
	KeyPendingOps = "pending_ops"
)

// StateFile is the filename for persisted client state.
const StateFile = "state.json"

// Store is a string key/value store.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, or "" if absent.
	Get(key string) string
	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

// FileStore persists values as a single JSON object on disk.
// Every mutation rewrites the file so queued state survives a crash.
type FileStore struct {
	path string
	mu   sync.RWMutex
	data map[string]string
}

// OpenFile loads (or initializes) a FileStore at dir/state.json.
// A missing file is the normal first-run case; a corrupt file is an error
// so the caller can decide to delete and recreate.
func OpenFile(dir string) (*FileStore, error) {
	s := &FileStore{
		path: filepath.Join(dir, StateFile),
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(s.path) //nolint:gosec // State path from config
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("corrupt state file %s: %w", s.path, err)
	}
	return s, nil
}

// Get returns the value for key, or "" if absent.
func (s *FileStore) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key]
}

// Set stores value under key and persists immediately.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.persist()
}

// Delete removes key and persists immediately.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return s.persist()
}

// persist writes the state file. Caller must hold the write lock.
func (s *FileStore) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests and ephemeral use.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMem creates an empty MemStore.
func NewMem() *MemStore {
	return &MemStore{data: make(map[string]string)}
}

// Get returns the value for key, or "" if absent.
func (s *MemStore) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key]
}

// Set stores value under key.
func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Delete removes key.
func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
