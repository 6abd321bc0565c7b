package storage

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
)

// Session is the authentication token issued by the backend.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

// User is the profile of the logged-in account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// sessionFile mirrors the two sync-scoped keys.
type sessionFile struct {
	Session *Session `json:"looplocal_session,omitempty"`
	User    *User    `json:"looplocal_user,omitempty"`
}

// SessionStore persists the session and user keys in their own file,
// separate from the saves.
type SessionStore struct {
	mu   sync.Mutex
	path string
}

// NewSessionStore creates a SessionStore at path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load returns the stored session and user. Both are nil when logged out.
func (s *SessionStore) Load() (*Session, *User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return nil, nil, err
	}
	return f.Session, f.User, nil
}

// Set stores the session and user.
func (s *SessionStore) Set(session *Session, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSONFile(s.path, sessionFile{Session: session, User: user}); err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// Clear removes both keys.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Op: "delete", Path: s.path, Err: err}
	}
	return nil
}

func (s *SessionStore) read() (sessionFile, error) {
	var f sessionFile
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return f, &StorageError{Op: "read", Path: s.path, Err: err}
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, &StorageError{Op: "parse", Path: s.path, Err: err}
	}
	return f, nil
}
