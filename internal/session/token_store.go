package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore keeps the bearer token between commands.
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	Clear() error
}

type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Clear() error {
	return s.SetToken("")
}

// FileStore keeps the token in a single file readable only by the owner.
// It remembers the last token it wrote or read so that a Watcher can tell
// its own writes from other processes'.
type FileStore struct {
	path string

	mu        sync.Mutex
	lastKnown string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Token() (string, error) {
	token, err := s.read()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.lastKnown = token
	s.mu.Unlock()
	return token, nil
}

func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	s.lastKnown = token
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastKnown = ""
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// refresh re-reads the file and reports whether the token differs from the
// last one this store saw.
func (s *FileStore) refresh() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.read()
	if err != nil {
		return "", false, err
	}
	changed := token != s.lastKnown
	s.lastKnown = token
	return token, changed, nil
}

func (s *FileStore) read() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
