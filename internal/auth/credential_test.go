package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "u1"}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestKeepRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "token")
	keep := NewKeep(path)

	require.NoError(t, keep.Set("tok-123"))
	assert.Equal(t, "tok-123", keep.Token())

	reloaded := NewKeep(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, "tok-123", reloaded.Token())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadMissingFileMeansLoggedOut(t *testing.T) {
	keep := NewKeep(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, keep.Load())
	assert.Empty(t, keep.Token())
}

func TestClearForgetsMemoryAndDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	keep := NewKeep(path)
	require.NoError(t, keep.Set("tok-123"))

	require.NoError(t, keep.Clear())
	assert.Empty(t, keep.Token())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing an already-cleared keep is fine.
	require.NoError(t, keep.Clear())
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, err := ExpiresAt(signedToken(t, exp))
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))
}

func TestExpiresAtGarbage(t *testing.T) {
	_, err := ExpiresAt("not-a-jwt")
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	now := time.Now()

	assert.True(t, Expired(signedToken(t, now.Add(-time.Minute)), now))
	assert.False(t, Expired(signedToken(t, now.Add(time.Minute)), now))

	// No expiry claim and unparseable tokens are the server's call.
	assert.False(t, Expired(signedToken(t, time.Time{}), now))
	assert.False(t, Expired("not-a-jwt", now))
}
