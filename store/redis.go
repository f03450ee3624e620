package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisKeyAccessToken   = "access_token"
	redisKeyRefreshToken  = "refresh_token"
	redisKeyCachedProfile = "cached_profile"
)

// Redis keeps credentials in a shared Redis instance, keyed under a
// per-profile prefix. Useful when several kiosk processes share one
// operator profile.
type Redis struct {
	client *redis.Client
	prefix string
}

// RedisOptions configures [OpenRedis].
type RedisOptions struct {
	// Prefix namespaces the three credential keys, typically one prefix
	// per operator profile. Defaults to "sessionkit".
	Prefix string

	// ConnectTimeout caps the initial ping-with-backoff loop.
	// Defaults to 15 seconds.
	ConnectTimeout time.Duration

	// Logger reports connection retries. Defaults to a no-op logger.
	Logger *zap.Logger
}

// OpenRedis verifies connectivity with exponential backoff and returns a
// Redis-backed store. The client remains owned by the caller.
func OpenRedis(ctx context.Context, client *redis.Client, opts RedisOptions) (*Redis, error) {
	if client == nil {
		return nil, errors.New("open redis store: nil client")
	}
	if opts.Prefix == "" {
		opts.Prefix = "sessionkit"
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = opts.ConnectTimeout

	err := backoff.RetryNotify(func() error {
		return client.Ping(ctx).Err()
	}, backoff.WithContext(bo, ctx), func(err error, next time.Duration) {
		opts.Logger.Warn("redis credential store unreachable, retrying",
			zap.Error(err), zap.Duration("next_attempt_in", next))
	})
	if err != nil {
		return nil, fmt.Errorf("open redis store: %w: %v", ErrUnavailable, err)
	}

	return &Redis{client: client, prefix: opts.Prefix}, nil
}

func (r *Redis) key(name string) string {
	return r.prefix + ":" + name
}

func (r *Redis) get(ctx context.Context, name string) (string, error) {
	val, err := r.client.Get(ctx, r.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis store get %s: %w: %v", name, ErrUnavailable, err)
	}
	return val, nil
}

func (r *Redis) set(ctx context.Context, name, value string) error {
	if value == "" {
		if err := r.client.Del(ctx, r.key(name)).Err(); err != nil {
			return fmt.Errorf("redis store del %s: %w: %v", name, ErrUnavailable, err)
		}
		return nil
	}
	if err := r.client.Set(ctx, r.key(name), value, 0).Err(); err != nil {
		return fmt.Errorf("redis store set %s: %w: %v", name, ErrUnavailable, err)
	}
	return nil
}

// AccessToken returns the stored access token, or "" when absent.
func (r *Redis) AccessToken(ctx context.Context) (string, error) {
	return r.get(ctx, redisKeyAccessToken)
}

// SetAccessToken stores the access token.
func (r *Redis) SetAccessToken(ctx context.Context, token string) error {
	return r.set(ctx, redisKeyAccessToken, token)
}

// RefreshToken returns the stored refresh token, or "" when absent.
func (r *Redis) RefreshToken(ctx context.Context) (string, error) {
	return r.get(ctx, redisKeyRefreshToken)
}

// SetRefreshToken stores the refresh token.
func (r *Redis) SetRefreshToken(ctx context.Context, token string) error {
	return r.set(ctx, redisKeyRefreshToken, token)
}

// CachedProfile returns the serialized cached user profile, or "" when absent.
func (r *Redis) CachedProfile(ctx context.Context) (string, error) {
	return r.get(ctx, redisKeyCachedProfile)
}

// SetCachedProfile stores the serialized user profile.
func (r *Redis) SetCachedProfile(ctx context.Context, raw string) error {
	return r.set(ctx, redisKeyCachedProfile, raw)
}

// Clear deletes all three keys in a single DEL so the teardown is atomic.
func (r *Redis) Clear(ctx context.Context) error {
	err := r.client.Del(ctx,
		r.key(redisKeyAccessToken),
		r.key(redisKeyRefreshToken),
		r.key(redisKeyCachedProfile),
	).Err()
	if err != nil {
		return fmt.Errorf("redis store clear: %w: %v", ErrUnavailable, err)
	}
	return nil
}
