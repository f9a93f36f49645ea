package tokenstore

import (
	"context"
	"sync"
)

// Memory keeps the pair in process memory.  It is the store used by tests
// and by one-shot commands that must not leave state behind.
type Memory struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Set(_ context.Context, accessToken, refreshToken string) error {
	if err := checkPair(accessToken, refreshToken); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = accessToken, refreshToken
	return nil
}

func (m *Memory) SetAccessToken(_ context.Context, accessToken string) error {
	if accessToken == "" {
		return ErrEmptyToken
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = accessToken
	return nil
}

func (m *Memory) AccessToken(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access, nil
}

func (m *Memory) RefreshToken(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refresh, nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = "", ""
	return nil
}
