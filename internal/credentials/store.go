// Package credentials holds the access/refresh token pair shared by the
// request gateway and the login commands.
package credentials

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/natefinch/atomic"
	"golang.org/x/oauth2"
)

// ErrNoRefreshToken is returned when a refresh is requested without a stored refresh token.
var ErrNoRefreshToken = errors.New("no refresh token available")

// Store is the process-wide credential pair, owned by the composition root and
// injected into the gateway. The latest write always wins.
//
// When path is non-empty every write is persisted there; an empty path keeps
// the pair in memory only.
type Store struct {
	mu    sync.RWMutex
	token *oauth2.Token
	path  string
}

// NewStore creates an empty store persisting to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load creates a store from the credentials file at path.
// A missing file yields an empty (logged out) store.
func Load(path string) (*Store, error) {
	s := NewStore(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid credentials file: %w", err)
	}
	if token.AccessToken != "" || token.RefreshToken != "" {
		s.token = &token
	}
	return s, nil
}

// AccessToken returns the current access token, or "" when logged out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// RefreshToken returns the current refresh token, or "" when none is held.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.RefreshToken
}

// LoggedIn reports whether any credential is held.
func (s *Store) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != nil
}

// Install replaces the access token and, when refresh is non-empty, the
// refresh token. An empty refresh keeps the previous one (non-rotating refresh).
func (s *Store) Install(access, refresh string) error {
	s.mu.Lock()
	next := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	if s.token != nil {
		next.RefreshToken = s.token.RefreshToken
	}
	if refresh != "" {
		next.RefreshToken = refresh
	}
	s.token = next
	s.mu.Unlock()

	return s.persist(next)
}

// Clear drops the pair and removes the persisted file.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// SetAuthHeader sets the bearer Authorization header when an access token is held.
func (s *Store) SetAuthHeader(r *http.Request) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == nil || token.AccessToken == "" {
		return
	}
	token.SetAuthHeader(r)
}

func (s *Store) persist(token *oauth2.Token) error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	// atomic.WriteFile keeps the mode of the temp file, tighten it.
	return os.Chmod(s.path, 0600)
}
