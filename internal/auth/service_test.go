package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/terminal-chat/internal/store/sqlite"
)

func newTestAuthService(t *testing.T, hasher PasswordHasher) *Service {
	t.Helper()

	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return NewService(st, hasher)
}

func TestRegisterOrLogin_CreatesThenLogsIn(t *testing.T) {
	svc := newTestAuthService(t, nil)
	ctx := context.Background()

	first, created, err := svc.RegisterOrLogin(ctx, "alice", "pw1234")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "alice", first.Username)
	require.Equal(t, "alice", first.DisplayName)

	second, created, err := svc.RegisterOrLogin(ctx, "alice", "pw1234")
	require.NoError(t, err)
	require.False(t, created, "second login must not create a duplicate profile")
	require.Equal(t, first.Username, second.Username)
	require.Equal(t, first.DisplayName, second.DisplayName)
	require.Equal(t, first.PasswordHash, second.PasswordHash)
}

func TestRegisterOrLogin_RejectsWrongPassword(t *testing.T) {
	svc := newTestAuthService(t, nil)
	ctx := context.Background()

	_, _, err := svc.RegisterOrLogin(ctx, "alice", "pw1234")
	require.NoError(t, err)

	_, _, err = svc.RegisterOrLogin(ctx, "alice", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterOrLogin_RequiresBothFields(t *testing.T) {
	svc := newTestAuthService(t, nil)
	ctx := context.Background()

	_, _, err := svc.RegisterOrLogin(ctx, "", "pw")
	require.ErrorIs(t, err, ErrMissingCredentials)

	_, _, err = svc.RegisterOrLogin(ctx, "alice", "")
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestRegisterOrLogin_WithBcrypt(t *testing.T) {
	svc := newTestAuthService(t, BcryptHasher{Cost: 4})
	ctx := context.Background()

	p, _, err := svc.RegisterOrLogin(ctx, "bob", "secret")
	require.NoError(t, err)
	require.NotEqual(t, "secret", p.PasswordHash)

	_, _, err = svc.RegisterOrLogin(ctx, "bob", "secret")
	require.NoError(t, err)

	_, _, err = svc.RegisterOrLogin(ctx, "bob", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionResolvesToSameUser(t *testing.T) {
	svc := newTestAuthService(t, nil)
	ctx := context.Background()

	_, _, err := svc.RegisterOrLogin(ctx, "alice", "pw1234")
	require.NoError(t, err)

	token, err := svc.CreateSession(ctx, "alice", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	for i := 0; i < 3; i++ {
		sess, err := svc.ResolveSession(ctx, token)
		require.NoError(t, err)
		require.Equal(t, "alice", sess.Username)
	}

	_, err = svc.ResolveSession(ctx, "unknown")
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.ResolveSession(ctx, "")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRenameDisplayName(t *testing.T) {
	svc := newTestAuthService(t, nil)
	ctx := context.Background()

	_, _, err := svc.RegisterOrLogin(ctx, "alice", "pw1234")
	require.NoError(t, err)
	token, err := svc.CreateSession(ctx, "alice", "alice")
	require.NoError(t, err)

	_, err = svc.RenameDisplayName(ctx, "alice", token, "   ")
	require.ErrorIs(t, err, ErrInvalidDisplayName)

	name, err := svc.RenameDisplayName(ctx, "alice", token, "  Ally ")
	require.NoError(t, err)
	require.Equal(t, "Ally", name)

	sess, err := svc.ResolveSession(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "Ally", sess.DisplayName)

	p, _, err := svc.RegisterOrLogin(ctx, "alice", "pw1234")
	require.NoError(t, err)
	require.Equal(t, "Ally", p.DisplayName)
}
