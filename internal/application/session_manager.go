package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/curascan/cli/internal/domain"
	"github.com/curascan/cli/internal/ports"
)

type SessionState string

const (
	SessionAnonymous     SessionState = "anonymous"
	SessionVerifying     SessionState = "verifying"
	SessionAuthenticated SessionState = "authenticated"
)

// SessionManager owns login, logout and startup verification. It is the
// only writer of the credential store; every other component reads the
// session through it.
type SessionManager struct {
	auth  ports.AuthAPI
	creds *CredentialStore
	clock ports.Clock

	mu      sync.Mutex
	state   SessionState
	session domain.Session
}

func NewSessionManager(auth ports.AuthAPI, creds *CredentialStore, clock ports.Clock) *SessionManager {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &SessionManager{
		auth:  auth,
		creds: creds,
		clock: clock,
		state: SessionAnonymous,
	}
}

// Restore loads a previously stored session, if any, and suspends in
// Verifying. No authenticated surface may render until Verify resolves.
func (m *SessionManager) Restore(ctx context.Context) bool {
	session, err := m.creds.Load(ctx)
	if err != nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
	m.state = SessionVerifying
	return true
}

// Verify asks the backend who the stored token belongs to. Any failure
// is treated as an expired or invalid token and tears the session down,
// so the client never renders authenticated UI on a stale token.
func (m *SessionManager) Verify(ctx context.Context) error {
	m.mu.Lock()
	token := m.session.AccessToken
	m.mu.Unlock()

	if token == "" {
		m.Logout(ctx)
		return domain.ErrSessionNotFound
	}

	actor, err := m.auth.Me(ctx, token)
	if err != nil {
		m.Logout(ctx)
		return fmt.Errorf("verify session: %w", err)
	}

	m.mu.Lock()
	m.session.Actor = actor
	m.state = SessionAuthenticated
	session := m.session
	m.mu.Unlock()

	// Refresh the cached profile; staleness here is not fatal.
	_ = m.creds.Save(ctx, session)

	return nil
}

// Login exchanges credentials for a session. The identifier may be a
// username or an email address.
func (m *SessionManager) Login(ctx context.Context, identifier, secret string) (domain.Session, error) {
	session, err := m.auth.Login(ctx, identifier, secret)
	if err != nil {
		return domain.Session{}, err
	}

	if err := m.creds.Save(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("persist session: %w", err)
	}

	m.mu.Lock()
	m.session = session
	m.state = SessionAuthenticated
	m.mu.Unlock()

	return session, nil
}

// Logout is idempotent and safe to call concurrently. The credential
// store is cleared before the server is notified, so the client reflects
// the logged-out state even if the notification hangs or fails; the
// server call is best-effort and its error is swallowed.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	token := m.session.AccessToken
	m.session = domain.Session{}
	m.state = SessionAnonymous
	m.mu.Unlock()

	_ = m.creds.Clear(ctx)

	if token != "" {
		_ = m.auth.Logout(ctx, token)
	}
}

// Invalidate is the systemic 401 handler. Concurrent triggers (an
// expired-token response racing a manual logout) collapse into a single
// server notification because only the first caller still holds a token.
func (m *SessionManager) Invalidate(ctx context.Context) {
	m.mu.Lock()
	anonymous := m.state == SessionAnonymous
	m.mu.Unlock()

	if anonymous {
		return
	}
	m.Logout(ctx)
}

// Token returns the current access token, or "" when anonymous. Wired
// into the API client so every outbound request carries the bearer
// token while one exists.
func (m *SessionManager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.AccessToken
}

func (m *SessionManager) Current() (domain.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.session.Present()
}

func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
