// Package auth keeps the session credential: a single opaque token issued
// by the server at login. The client never validates the signature — only
// the server can do that — but it does read the registered claims to skip
// connecting with a token that has already expired.
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Keep is the file-backed credential store. The token is the only state
// this client persists across runs.
type Keep struct {
	path string

	mu    sync.Mutex
	token string
}

func NewKeep(path string) *Keep {
	return &Keep{path: path}
}

// Load reads a previously persisted token, if any. A missing file just
// means no session.
func (k *Keep) Load() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	data, err := os.ReadFile(k.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read credential: %w", err)
	}
	k.token = string(data)
	return nil
}

// Token returns the current credential, or "" when logged out.
func (k *Keep) Token() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.token
}

// Set stores and persists a fresh credential.
func (k *Keep) Set(token string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.token = token
	if err := os.MkdirAll(filepath.Dir(k.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	if err := os.WriteFile(k.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

// Clear forgets the credential in memory and on disk. Part of every
// session teardown.
func (k *Keep) Clear() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.token = ""
	if err := os.Remove(k.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}

// ExpiresAt reads the expiry claim without verifying the signature.
// Verification happens server-side on every request; locally we only care
// whether a round-trip is pointless.
func ExpiresAt(token string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parse credential: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// Expired reports whether the token carries an expiry in the past. Tokens
// without an expiry claim, or unparseable ones, report false and are left
// for the server to judge.
func Expired(token string, now time.Time) bool {
	exp, err := ExpiresAt(token)
	if err != nil || exp.IsZero() {
		return false
	}
	return exp.Before(now)
}
