// Package tokenstore holds the current access token. It is the single
// source of truth for the credential attached to outbound API calls:
// the HTTP client reads it on every request, and only the session layer
// and the refresh path write it.
package tokenstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is a process-wide holder for the access token. Implementations
// must be safe for concurrent use.
type Store interface {
	// Token returns the current access token, or "" when none is set.
	Token() string
	// SetToken replaces the current access token.
	SetToken(token string) error
	// Clear removes the token. Clearing an empty store is a no-op.
	Clear() error
}

// EnvToken is the environment variable that overrides the persisted token.
const EnvToken = "VELOCARDS_TOKEN"

const tokenFileName = "token"

// FileStore persists the token as a single file under the state directory,
// mirroring where the CLI keeps the rest of its local state. Reads are
// served from an in-memory copy once loaded.
type FileStore struct {
	mu     sync.RWMutex
	dir    string
	token  string
	loaded bool
}

// NewFileStore creates a file-backed store rooted at dir. The directory is
// created lazily on the first SetToken.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, tokenFileName)
}

// Token returns the env override if set, otherwise the persisted token.
// A missing file or directory reads as "".
func (s *FileStore) Token() string {
	if tok := os.Getenv(EnvToken); tok != "" {
		return tok
	}

	s.mu.RLock()
	if s.loaded {
		tok := s.token
		s.mu.RUnlock()
		return tok
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.token
	}
	data, err := os.ReadFile(s.path())
	if err != nil {
		s.token = ""
	} else {
		s.token = strings.TrimSpace(string(data))
	}
	s.loaded = true
	return s.token
}

// SetToken persists the token with owner-only permissions.
func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	if err := os.WriteFile(s.path(), []byte(token), 0600); err != nil {
		return err
	}
	s.token = token
	s.loaded = true
	return nil
}

// Clear removes the token file. Already-absent state is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.loaded = true
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemStore keeps the token in memory only. Used in tests and anywhere
// persistence is undesirable.
type MemStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
