package store

import (
	"context"
	"sync"
)

// Memory is the default in-process credential store.
type Memory struct {
	mu            sync.RWMutex
	accessToken   string
	refreshToken  string
	cachedProfile string
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{}
}

// AccessToken returns the stored access token, or "" when absent.
func (m *Memory) AccessToken(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accessToken, nil
}

// SetAccessToken stores the access token.
func (m *Memory) SetAccessToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accessToken = token
	return nil
}

// RefreshToken returns the stored refresh token, or "" when absent.
func (m *Memory) RefreshToken(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshToken, nil
}

// SetRefreshToken stores the refresh token.
func (m *Memory) SetRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshToken = token
	return nil
}

// CachedProfile returns the serialized cached user profile, or "" when absent.
func (m *Memory) CachedProfile(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cachedProfile, nil
}

// SetCachedProfile stores the serialized user profile.
func (m *Memory) SetCachedProfile(_ context.Context, raw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cachedProfile = raw
	return nil
}

// Clear removes all three keys atomically.
func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accessToken = ""
	m.refreshToken = ""
	m.cachedProfile = ""
	return nil
}
