// Package client is the Go client for the plateful API: a durable session
// store, a transport that refreshes expired access tokens transparently,
// and typed wrappers for every endpoint.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Principal is the authenticated identity cached alongside the tokens.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// sessionRecord is the persisted session layout. IsAuthenticated is written
// for inspection but never trusted on load; it is always recomputed from
// the fields it derives from.
type sessionRecord struct {
	Principal       *Principal `json:"principal"`
	AccessToken     string     `json:"accessToken"`
	RefreshToken    string     `json:"refreshToken"`
	IsAuthenticated bool       `json:"isAuthenticated"`
}

// SessionStore is the single source of truth for the current session,
// persisted to a JSON file. Every mutation is a full replace or a full
// clear, never a partial field update.
type SessionStore struct {
	mu     sync.Mutex
	path   string
	record sessionRecord
}

// NewSessionStore loads the session persisted at path, or starts empty if
// none exists.
func NewSessionStore(path string) (*SessionStore, error) {
	s := &SessionStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// A corrupt session file means starting logged out, not failing.
		return s, nil
	}

	// Recompute the derived flag instead of trusting the persisted one.
	record.IsAuthenticated = record.Principal != nil && record.AccessToken != ""
	s.record = record
	return s, nil
}

// Set replaces the whole session atomically and persists it.
func (s *SessionStore) Set(principal *Principal, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = sessionRecord{
		Principal:       principal,
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		IsAuthenticated: principal != nil && accessToken != "",
	}
	return s.persist()
}

// SetTokens replaces the token pair, keeping the cached principal.
func (s *SessionStore) SetTokens(accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.AccessToken = accessToken
	s.record.RefreshToken = refreshToken
	s.record.IsAuthenticated = s.record.Principal != nil && accessToken != ""
	return s.persist()
}

// Clear empties the session and removes the persisted record entirely, so
// stale partial state can never be rehydrated.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = sessionRecord{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Principal returns the cached principal, or nil when logged out.
func (s *SessionStore) Principal() *Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Principal
}

// AccessToken returns the current access token, or "".
func (s *SessionStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.AccessToken
}

// RefreshToken returns the current refresh token, or "".
func (s *SessionStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.RefreshToken
}

// IsAuthenticated reports whether a usable session is present.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.IsAuthenticated
}

// persist writes the record with a temp file and rename so a crash cannot
// leave a torn session on disk. Caller must hold the mutex.
func (s *SessionStore) persist() error {
	data, err := json.MarshalIndent(s.record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
