package session

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Manager owns the session lifecycle: restored or set on login, cleared on
// logout. It is injected into every view that needs the current user or
// issues authenticated calls.
type Manager struct {
	repo Repository
	auth Authenticator

	mu      sync.RWMutex
	current Session
}

// NewManager creates a Manager starting as a guest.
func NewManager(repo Repository, auth Authenticator) *Manager {
	return &Manager{repo: repo, auth: auth}
}

// Restore loads a stored token and resolves its user. A missing token leaves
// the session as a guest and is not an error. A stored token the API no
// longer accepts is cleared. Any other failure keeps the token for the next
// run and returns the error with the session still a guest.
func (m *Manager) Restore(ctx context.Context) (Session, error) {
	token, err := m.repo.Get(ctx)
	if errors.Is(err, ErrNoToken) {
		return m.Current(), nil
	}
	if err != nil {
		return Session{}, errors.Wrap(err, "get stored token")
	}

	user, err := m.auth.Me(ctx, token)
	switch {
	case errors.Is(err, ErrUnauthorized):
		zctx.From(ctx).Warn("Stored token rejected, clearing", zap.Error(err))
		if clearErr := m.repo.Clear(ctx); clearErr != nil {
			return Session{}, errors.Wrap(clearErr, "clear stored token")
		}
		return m.Current(), nil
	case err != nil:
		return m.Current(), errors.Wrap(err, "resolve stored token")
	}

	return m.set(Session{User: user, Token: token}), nil
}

// Login authenticates, stores the token and returns the new session.
func (m *Manager) Login(ctx context.Context, creds Credentials) (Session, error) {
	token, err := m.auth.Login(ctx, creds)
	if err != nil {
		return Session{}, errors.Wrap(err, "login")
	}
	user, err := m.auth.Me(ctx, token)
	if err != nil {
		return Session{}, errors.Wrap(err, "resolve user")
	}
	if err := m.repo.Set(ctx, token); err != nil {
		return Session{}, errors.Wrap(err, "store token")
	}

	zctx.From(ctx).Info("Signed in",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return m.set(Session{User: user, Token: token}), nil
}

// Logout clears the stored token and resets the session to a guest.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.repo.Clear(ctx); err != nil {
		return errors.Wrap(err, "clear token")
	}
	m.set(Session{})
	return nil
}

// Current returns a snapshot of the session.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Token returns the bearer token, or "" for a guest.
func (m *Manager) Token() string {
	return m.Current().Token
}

func (m *Manager) set(s Session) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	return s
}
