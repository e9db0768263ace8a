package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curascan/cli/internal/domain"
)

func newTestSessionManager(auth *fakeAuth, vault *memVault, profiles *memProfiles) *SessionManager {
	creds := NewCredentialStore(vault, profiles)
	return NewSessionManager(auth, creds, nil)
}

func TestSessionManagerLoginPersistsSession(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{loginSession: testSession()}
	vault := &memVault{}
	profiles := &memProfiles{}
	manager := newTestSessionManager(auth, vault, profiles)
	ctx := context.Background()

	session, err := manager.Login(ctx, "dr.osei", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, testSession(), session)
	assert.Equal(t, SessionAuthenticated, manager.State())
	assert.Equal(t, "tok-abc", manager.Token())

	// The session must survive a restart.
	restarted := newTestSessionManager(auth, vault, profiles)
	require.True(t, restarted.Restore(ctx))
	assert.Equal(t, SessionVerifying, restarted.State())
}

func TestSessionManagerLoginRejected(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{loginErr: errors.New("incorrect username/email or password")}
	manager := newTestSessionManager(auth, &memVault{}, &memProfiles{})

	_, err := manager.Login(context.Background(), "dr.osei", "wrong")
	require.Error(t, err)
	assert.Equal(t, SessionAnonymous, manager.State())
	assert.Empty(t, manager.Token())
}

func TestSessionManagerLoginPersistFailureStaysAnonymous(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{loginSession: testSession()}
	vault := &memVault{writeErr: errors.New("vault locked")}
	manager := newTestSessionManager(auth, vault, &memProfiles{})

	_, err := manager.Login(context.Background(), "dr.osei", "hunter2")
	require.Error(t, err)
	assert.Equal(t, SessionAnonymous, manager.State())
}

func TestSessionManagerRestoreWithoutStoredSession(t *testing.T) {
	t.Parallel()

	manager := newTestSessionManager(&fakeAuth{}, &memVault{}, &memProfiles{})
	assert.False(t, manager.Restore(context.Background()))
	assert.Equal(t, SessionAnonymous, manager.State())
}

func TestSessionManagerVerifySuccessRefreshesActor(t *testing.T) {
	t.Parallel()

	renamed := testActor()
	renamed.FullName = "Dr. Ama Osei-Mensah"
	auth := &fakeAuth{meActor: renamed}
	vault := &memVault{token: "tok-abc", present: true}
	profiles := &memProfiles{actor: testActor(), present: true}
	manager := newTestSessionManager(auth, vault, profiles)
	ctx := context.Background()

	require.True(t, manager.Restore(ctx))
	require.NoError(t, manager.Verify(ctx))

	assert.Equal(t, SessionAuthenticated, manager.State())
	session, ok := manager.Current()
	require.True(t, ok)
	assert.Equal(t, "Dr. Ama Osei-Mensah", session.Actor.FullName)
	assert.Equal(t, renamed, profiles.actor, "verified profile must be re-cached")
}

func TestSessionManagerVerifyFailureTearsDownSession(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{meErr: domain.ErrUnauthorized}
	vault := &memVault{token: "tok-stale", present: true}
	profiles := &memProfiles{actor: testActor(), present: true}
	manager := newTestSessionManager(auth, vault, profiles)
	ctx := context.Background()

	require.True(t, manager.Restore(ctx))
	err := manager.Verify(ctx)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.Equal(t, SessionAnonymous, manager.State())
	assert.Empty(t, manager.Token())
	assert.False(t, vault.present, "stale token must not stay on disk")
	assert.False(t, profiles.present)
}

func TestSessionManagerLogoutClearsStoreBeforeNotifyingServer(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{loginSession: testSession(), logoutErr: errors.New("backend down")}
	vault := &memVault{}
	profiles := &memProfiles{}
	manager := newTestSessionManager(auth, vault, profiles)
	ctx := context.Background()

	_, err := manager.Login(ctx, "dr.osei", "hunter2")
	require.NoError(t, err)

	manager.Logout(ctx)

	assert.Equal(t, SessionAnonymous, manager.State())
	assert.False(t, vault.present, "failed server notification must not keep the local session")
	assert.Equal(t, []string{"tok-abc"}, auth.logoutCalls())
}

func TestSessionManagerLogoutIdempotent(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{loginSession: testSession()}
	manager := newTestSessionManager(auth, &memVault{}, &memProfiles{})
	ctx := context.Background()

	_, err := manager.Login(ctx, "dr.osei", "hunter2")
	require.NoError(t, err)

	manager.Logout(ctx)
	manager.Logout(ctx)

	// Only the first logout still held a token to revoke.
	assert.Equal(t, []string{"tok-abc"}, auth.logoutCalls())
}

func TestSessionManagerInvalidateOnceUnderConcurrentTriggers(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{loginSession: testSession()}
	manager := newTestSessionManager(auth, &memVault{}, &memProfiles{})
	ctx := context.Background()

	_, err := manager.Login(ctx, "dr.osei", "hunter2")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			manager.Invalidate(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, SessionAnonymous, manager.State())
	assert.Len(t, auth.logoutCalls(), 1, "a burst of expiry signals is one logout")
}

func TestSessionManagerInvalidateWhileAnonymousIsNoOp(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{}
	manager := newTestSessionManager(auth, &memVault{}, &memProfiles{})

	manager.Invalidate(context.Background())
	assert.Empty(t, auth.logoutCalls())
}
