package sessionkit

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full configuration tree for a [Session]. Zero values are
// filled from [defaultConfig] by the builder; a Config is treated as
// immutable after Build.
type Config struct {
	HTTP      HTTPConfig
	Auth      AuthConfig
	Endpoints EndpointConfig
	Events    EventConfig
	Metrics   MetricsConfig
}

// HTTPConfig configures the request pipeline.
type HTTPConfig struct {
	// BaseURL is the identity service root, e.g. "https://portal.example.com/api".
	BaseURL string
	// Timeout bounds each HTTP exchange. Default 15s.
	Timeout time.Duration
	// RequestIDHeader carries the per-request trace identifier. Default
	// "X-Request-ID".
	RequestIDHeader string
}

// AuthConfig configures local token plausibility checks.
type AuthConfig struct {
	// MinTokenLength is the minimum plausible access token length; anything
	// shorter is treated identically to no token. Default 20.
	MinTokenLength int
	// ProbeTokenShape additionally requires the stored token to parse as a
	// JWT (unverified) before the bootstrap network call. Default false,
	// since the token format is the identity service's business.
	ProbeTokenShape bool
}

// EndpointConfig holds the identity service paths, relative to BaseURL.
type EndpointConfig struct {
	Login          string
	Register       string
	Logout         string
	Me             string
	Refresh        string
	Profile        string
	ChangePassword string
	ForgotPassword string
	ResetPassword  string
}

// EventConfig controls the async session event dispatcher.
type EventConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics core.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration tree the builder starts from.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:         15 * time.Second,
			RequestIDHeader: "X-Request-ID",
		},
		Auth: AuthConfig{
			MinTokenLength: 20,
		},
		Endpoints: EndpointConfig{
			Login:          "/auth/login",
			Register:       "/auth/register",
			Logout:         "/auth/logout",
			Me:             "/auth/me",
			Refresh:        "/auth/refresh",
			Profile:        "/auth/profile",
			ChangePassword: "/auth/change-password",
			ForgotPassword: "/auth/forgot-password",
			ResetPassword:  "/auth/reset-password",
		},
		Events: EventConfig{
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// No reference fields today; the copy exists so later additions cannot
	// alias builder state into a live session.
	return cfg
}

// Validate checks the configuration tree for values a session cannot run with.
func (c Config) Validate() error {
	if c.HTTP.BaseURL == "" {
		return errors.New("config: HTTP.BaseURL required")
	}
	u, err := url.Parse(c.HTTP.BaseURL)
	if err != nil {
		return fmt.Errorf("config: parse HTTP.BaseURL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: HTTP.BaseURL %q must be absolute", c.HTTP.BaseURL)
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("config: HTTP.Timeout must be positive")
	}
	if c.Auth.MinTokenLength < 1 {
		return errors.New("config: Auth.MinTokenLength must be at least 1")
	}

	paths := map[string]string{
		"Login":          c.Endpoints.Login,
		"Register":       c.Endpoints.Register,
		"Logout":         c.Endpoints.Logout,
		"Me":             c.Endpoints.Me,
		"Refresh":        c.Endpoints.Refresh,
		"Profile":        c.Endpoints.Profile,
		"ChangePassword": c.Endpoints.ChangePassword,
		"ForgotPassword": c.Endpoints.ForgotPassword,
		"ResetPassword":  c.Endpoints.ResetPassword,
	}
	for name, p := range paths {
		if p == "" || !strings.HasPrefix(p, "/") {
			return fmt.Errorf("config: Endpoints.%s %q must start with /", name, p)
		}
	}
	return nil
}

// FromEnv builds a Config from SESSIONKIT_* environment variables layered
// over the defaults. Unset variables keep their default.
func FromEnv() Config {
	cfg := defaultConfig()
	cfg.HTTP.BaseURL = getenv("SESSIONKIT_BASE_URL", cfg.HTTP.BaseURL)
	cfg.HTTP.Timeout = getenvDuration("SESSIONKIT_HTTP_TIMEOUT", cfg.HTTP.Timeout)
	cfg.HTTP.RequestIDHeader = getenv("SESSIONKIT_REQUEST_ID_HEADER", cfg.HTTP.RequestIDHeader)
	cfg.Auth.MinTokenLength = getenvInt("SESSIONKIT_MIN_TOKEN_LENGTH", cfg.Auth.MinTokenLength)
	cfg.Auth.ProbeTokenShape = getenvBool("SESSIONKIT_PROBE_TOKEN_SHAPE", cfg.Auth.ProbeTokenShape)
	cfg.Events.Enabled = getenvBool("SESSIONKIT_EVENTS_ENABLED", cfg.Events.Enabled)
	cfg.Metrics.Enabled = getenvBool("SESSIONKIT_METRICS_ENABLED", cfg.Metrics.Enabled)
	return cfg
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}
