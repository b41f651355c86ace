package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, path string) *Manager {
	t.Helper()
	m, err := NewManager(path, []byte("test-secret"), time.Hour)
	require.NoError(t, err)
	return m
}

func TestManager_FallbackPrincipalSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	m1 := newTestManager(t, path)
	id1, err := m1.CurrentUserID(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, id1)

	// A new manager over the same file resolves the same principal.
	m2 := newTestManager(t, path)
	id2, err := m2.CurrentUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestManager_CorruptStateFileRegenerates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o660))

	m := newTestManager(t, path)
	id, err := m.CurrentUserID(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestManager_SignInSwitchesPrincipal(t *testing.T) {
	m := newTestManager(t, filepath.Join(t.TempDir(), "session.json"))
	ctx := context.Background()

	assert.False(t, m.IsSignedIn(ctx))

	require.NoError(t, m.SignIn("agent-42"))
	assert.True(t, m.IsSignedIn(ctx))

	id, err := m.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "agent-42", id)

	m.SignOut()
	assert.False(t, m.IsSignedIn(ctx))

	fallback, err := m.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "agent-42", fallback)
	assert.NotEmpty(t, fallback)
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	secret := []byte("secret")
	token, err := GenerateToken("user-7", secret, time.Hour)
	require.NoError(t, err)

	userID, err := GetUserIDFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-7", userID)
}

func TestGetUserIDFromToken_RejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-7", []byte("secret"), time.Hour)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, []byte("other-secret"))
	assert.Error(t, err)
}

func TestGetUserIDFromToken_RejectsExpired(t *testing.T) {
	token, err := GenerateToken("user-7", []byte("secret"), -time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, []byte("secret"))
	assert.Error(t, err)
}
