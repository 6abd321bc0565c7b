// Package auth keeps the user's backend session.
package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/nikbrunner/spots/internal/remote"
	"github.com/nikbrunner/spots/internal/storage"
)

// Backend is the subset of the remote client the manager needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (*remote.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (bool, *remote.User, error)
}

// Manager logs in and out and supplies bearer tokens to the remote client.
type Manager struct {
	sessions *storage.SessionStore
	backend  Backend
	logger   *zap.Logger
}

// NewManagerParams holds parameters for creating a Manager.
type NewManagerParams struct {
	Sessions *storage.SessionStore
	Backend  Backend
	Logger   *zap.Logger
}

// NewManager creates a new session manager.
func NewManager(params NewManagerParams) *Manager {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{sessions: params.Sessions, backend: params.Backend, logger: logger}
}

// Login authenticates with the backend and stores the session.
func (m *Manager) Login(ctx context.Context, email, password string) (*storage.User, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	res, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	session := &storage.Session{
		AccessToken:  res.Session.AccessToken,
		RefreshToken: res.Session.RefreshToken,
		ExpiresAt:    res.Session.ExpiresAt,
	}
	user := toStorageUser(&res.User)
	if err := m.sessions.Set(session, user); err != nil {
		return nil, err
	}

	m.logger.Info("logged in", zap.String("email", user.Email))
	return user, nil
}

// Logout tells the backend to drop the session and always clears the
// local copy, even when the backend call fails.
func (m *Manager) Logout(ctx context.Context) error {
	session, _, err := m.sessions.Load()
	if err == nil && session != nil && session.AccessToken != "" {
		if err := m.backend.Logout(ctx, session.AccessToken); err != nil {
			m.logger.Warn("backend logout failed", zap.Error(err))
		}
	}
	return m.sessions.Clear()
}

// IsLoggedIn reports whether a session token is stored.
func (m *Manager) IsLoggedIn() bool {
	token, err := m.Token()
	return err == nil && token != ""
}

// User returns the stored user, or nil when logged out.
func (m *Manager) User() (*storage.User, error) {
	_, user, err := m.sessions.Load()
	return user, err
}

// Token implements remote.TokenSource.
func (m *Manager) Token() (string, error) {
	session, _, err := m.sessions.Load()
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", nil
	}
	return session.AccessToken, nil
}

// Verify checks the stored session with the backend. An invalid session
// is cleared. Network failures leave the session in place and report
// not valid.
func (m *Manager) Verify(ctx context.Context) (bool, error) {
	session, _, err := m.sessions.Load()
	if err != nil {
		return false, err
	}
	if session == nil || session.AccessToken == "" {
		return false, nil
	}

	valid, user, err := m.backend.Verify(ctx, session.AccessToken)
	if err != nil {
		m.logger.Warn("session verification failed", zap.Error(err))
		return false, nil
	}
	if !valid {
		m.logger.Info("session no longer valid, clearing")
		return false, m.Logout(ctx)
	}
	if user != nil {
		if err := m.sessions.Set(session, toStorageUser(user)); err != nil {
			return true, err
		}
	}
	return true, nil
}

// HasSession implements coordinator.SessionChecker.
func (m *Manager) HasSession(ctx context.Context) bool {
	return m.IsLoggedIn()
}

func toStorageUser(u *remote.User) *storage.User {
	if u == nil {
		return nil
	}
	return &storage.User{ID: u.ID, Email: u.Email, Name: u.Name}
}
