// Package session answers the one question the rest of the system asks about
// identity: "who is the current principal". When an agent has signed in, the
// principal comes from their session token; otherwise a locally persisted
// fallback identifier is used, so the store can scope rows even before any
// real identity provider is reachable.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/google/uuid"
)

// Manager holds the current session token and the persisted fallback
// principal. Safe for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	token      string
	fallbackID string

	secret   []byte
	validity time.Duration
	path     string
}

// persistedState is the on-disk format of the fallback principal file.
type persistedState struct {
	FallbackPrincipalID string `json:"fallback_principal_id"`
}

// NewManager loads (or generates and persists) the fallback principal
// identifier from the file at path.
func NewManager(path string, secret []byte, validity time.Duration) (*Manager, error) {
	m := &Manager{secret: secret, validity: validity, path: path}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var st persistedState
		if jsonErr := json.Unmarshal(data, &st); jsonErr == nil && st.FallbackPrincipalID != "" {
			m.fallbackID = st.FallbackPrincipalID
			return m, nil
		}
		// Corrupt state file: regenerate below rather than fail startup.
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrStorage, path, err)
	}

	m.fallbackID = uuid.NewString()
	if err := m.persistFallback(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) persistFallback() error {
	data, err := json.Marshal(persistedState{FallbackPrincipalID: m.fallbackID})
	if err != nil {
		return fmt.Errorf("%w: marshal session state: %v", common.ErrStorage, err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o770); err != nil {
		return fmt.Errorf("%w: mkdir: %v", common.ErrStorage, err)
	}
	if err := os.WriteFile(m.path, data, 0o660); err != nil {
		return fmt.Errorf("%w: write %s: %v", common.ErrStorage, m.path, err)
	}
	return nil
}

// SignIn issues and holds a session token for userID.
func (m *Manager) SignIn(userID string) error {
	token, err := GenerateToken(userID, m.secret, m.validity)
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// SignOut discards the held token. The fallback principal remains.
func (m *Manager) SignOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
}

// IsSignedIn reports whether a valid, unexpired session token is held.
func (m *Manager) IsSignedIn(ctx context.Context) bool {
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()

	if token == "" {
		return false
	}
	_, err := GetUserIDFromToken(token, m.secret)
	return err == nil
}

// CurrentUserID resolves the current principal: the signed-in agent when a
// valid token is held, the persisted fallback identifier otherwise.
func (m *Manager) CurrentUserID(ctx context.Context) (string, error) {
	m.mu.RLock()
	token := m.token
	fallback := m.fallbackID
	m.mu.RUnlock()

	if token != "" {
		if userID, err := GetUserIDFromToken(token, m.secret); err == nil {
			return userID, nil
		}
	}
	return fallback, nil
}
