package store

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the backing storage cannot be reached.
var ErrUnavailable = errors.New("credential store unavailable")

// Store holds the three persisted credential keys. An empty string means
// the key is absent. Every key is independently readable and writable;
// Clear removes all three atomically.
//
// Implementations must be safe for concurrent use: the session controller
// and the transport refresh step both mutate the store.
type Store interface {
	AccessToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error

	RefreshToken(ctx context.Context) (string, error)
	SetRefreshToken(ctx context.Context, token string) error

	CachedProfile(ctx context.Context) (string, error)
	SetCachedProfile(ctx context.Context, raw string) error

	Clear(ctx context.Context) error
}
