package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type fileRecord struct {
	AccessToken   string `json:"access_token,omitempty"`
	RefreshToken  string `json:"refresh_token,omitempty"`
	CachedProfile string `json:"cached_profile,omitempty"`
}

// File persists credentials as a JSON file so a session survives process
// restarts. Writes go through a temp file and an atomic rename; the file is
// created with 0600 permissions because it holds live credentials.
type File struct {
	mu   sync.Mutex
	path string
	rec  fileRecord
}

// OpenFile loads the credential file at path, creating the parent directory
// when needed. A missing file is treated as an empty store.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("open credential file: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("open credential file: %w", err)
	}

	f := &File{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open credential file: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.rec); err != nil {
			// A corrupt credential file is indistinguishable from a
			// tampered one. Start over empty.
			f.rec = fileRecord{}
		}
	}
	return f, nil
}

func (f *File) persistLocked() error {
	data, err := json.Marshal(f.rec)
	if err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}
	return nil
}

// AccessToken returns the stored access token, or "" when absent.
func (f *File) AccessToken(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rec.AccessToken, nil
}

// SetAccessToken stores the access token and persists the file.
func (f *File) SetAccessToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rec.AccessToken = token
	return f.persistLocked()
}

// RefreshToken returns the stored refresh token, or "" when absent.
func (f *File) RefreshToken(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rec.RefreshToken, nil
}

// SetRefreshToken stores the refresh token and persists the file.
func (f *File) SetRefreshToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rec.RefreshToken = token
	return f.persistLocked()
}

// CachedProfile returns the serialized cached user profile, or "" when absent.
func (f *File) CachedProfile(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rec.CachedProfile, nil
}

// SetCachedProfile stores the serialized user profile and persists the file.
func (f *File) SetCachedProfile(_ context.Context, raw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rec.CachedProfile = raw
	return f.persistLocked()
}

// Clear removes all keys and the backing file in one step.
func (f *File) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rec = fileRecord{}
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
