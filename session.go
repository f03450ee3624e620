package sessionkit

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/visadesk/sessionkit/internal/event"
	internalmetrics "github.com/visadesk/sessionkit/internal/metrics"
	"github.com/visadesk/sessionkit/internal/token"
	"github.com/visadesk/sessionkit/store"
	"github.com/visadesk/sessionkit/transport"
	"go.uber.org/zap"
)

// Session is the single source of truth for "who is signed in". It owns the
// session state tuple, de-duplicates concurrent bootstrap checks, and routes
// every auth-mutating operation through the request pipeline.
//
// Lifecycle: create ([New] + Build) → hydrate ([Session.Bootstrap]) →
// mutate (Login, Logout, …) → dispose ([Session.Close]).
type Session struct {
	cfg           Config
	store         store.Store
	pipeline      *transport.Client
	log           *zap.Logger
	metrics       *internalmetrics.Metrics
	events        *event.Dispatcher
	onAuthExpired func()

	mu            sync.Mutex
	user          *UserProfile
	authenticated bool
	loading       bool
	settled       bool
	lastErr       string

	// checking is the in-flight bootstrap guard: at most one verification
	// call runs at a time; duplicates are no-ops, not queued retries.
	checking atomic.Bool
	closed   atomic.Bool
}

// apiEnvelope is the identity service's uniform success envelope.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// authPayload is the data section of login/register/me responses.
type authPayload struct {
	User         *UserProfile `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
}

// State returns a snapshot of the session tuple. The returned profile is a
// copy; mutating it does not affect the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Authenticated: s.authenticated,
		Loading:       s.loading,
		Settled:       s.settled,
		Err:           s.lastErr,
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// HasRole reports whether the signed-in user's role is one of roles. It is
// false whenever no user is present.
func (s *Session) HasRole(roles ...Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return false
	}
	for _, r := range roles {
		if s.user.Role == r {
			return true
		}
	}
	return false
}

// Pipeline exposes the request pipeline so the rest of the portal client
// can route its domain calls through the same credential and retry
// handling.
func (s *Session) Pipeline() *transport.Client {
	return s.pipeline
}

// Bootstrap verifies a previously stored credential against the identity
// service. It runs at most once concurrently: a second call while one is in
// flight is a no-op. Local conclusions (no token, implausible token, token
// rejected by the backend) return nil; transient failures and rate limits
// return the underlying error with session state left untouched.
func (s *Session) Bootstrap(ctx context.Context) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if !s.checking.CompareAndSwap(false, true) {
		s.metrics.Inc(MetricBootstrapDeduplicated)
		s.log.Debug("bootstrap already in flight, collapsing")
		return nil
	}

	start := time.Now()
	s.setLoading(true)
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.settled = true
		s.mu.Unlock()
		s.checking.Store(false)
		s.metrics.Observe(MetricBootstrapLatency, time.Since(start))
	}()

	tok, err := s.store.AccessToken(ctx)
	if err != nil {
		// Storage trouble says nothing about credential validity.
		s.log.Warn("credential store unreadable during bootstrap", zap.Error(err))
		s.metrics.Inc(MetricBootstrapInconclusive)
		return err
	}
	if tok == "" {
		s.metrics.Inc(MetricBootstrapSkippedNoToken)
		s.setUnauthenticated()
		return nil
	}
	if !token.Plausible(tok, s.cfg.Auth.MinTokenLength) ||
		(s.cfg.Auth.ProbeTokenShape && !token.WellFormed(tok)) {
		s.metrics.Inc(MetricBootstrapTokenRejected)
		s.log.Debug("stored token failed local plausibility check")
		s.clearCredentials(ctx)
		s.setUnauthenticated()
		return nil
	}

	var env apiEnvelope
	err = s.pipeline.DoJSON(ctx, http.MethodGet, s.cfg.Endpoints.Me, nil, &env)
	if err == nil {
		var payload authPayload
		if len(env.Data) > 0 {
			_ = json.Unmarshal(env.Data, &payload)
		}
		if env.Success && payload.User != nil {
			s.metrics.Inc(MetricBootstrapConfirmed)
			s.adopt(ctx, payload.User)
			s.emit(ctx, EventBootstrap, payload.User.ID, true, "")
			return nil
		}
		// A success status without a usable user is a credential of unknown
		// validity; clear rather than guess.
		s.metrics.Inc(MetricBootstrapCleared)
		s.clearCredentials(ctx)
		s.setUnauthenticated()
		s.emit(ctx, EventBootstrap, "", false, "verification response carried no user")
		return nil
	}

	switch {
	case transport.IsStatus(err, http.StatusUnauthorized):
		s.metrics.Inc(MetricBootstrapCleared)
		s.clearCredentials(ctx)
		s.setUnauthenticated()
		s.emit(ctx, EventBootstrap, "", false, "stored token rejected by identity service")
		return nil
	case transport.IsStatus(err, http.StatusTooManyRequests):
		// Rate limiting carries no information about token validity.
		s.metrics.Inc(MetricBootstrapRateLimited)
		s.log.Debug("bootstrap rate limited, keeping current state")
		return err
	default:
		// Transient or server-side failure: optimistic continuity.
		s.metrics.Inc(MetricBootstrapInconclusive)
		s.log.Debug("bootstrap inconclusive, keeping current state", zap.Error(err))
		return err
	}
}

// Close disposes the session. Subsequent operations return
// [ErrSessionClosed]. In-memory state is not cleared here; call
// [Session.Logout] first when sign-out semantics are wanted.
func (s *Session) Close() {
	if s == nil {
		return
	}
	if s.closed.CompareAndSwap(false, true) {
		s.events.Close()
	}
}

// MetricsSnapshot returns a point-in-time copy of all metrics.
func (s *Session) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return s.metrics.Snapshot()
}

// EventsDropped reports events discarded by the dispatcher under
// backpressure.
func (s *Session) EventsDropped() uint64 {
	if s == nil {
		return 0
	}
	return s.events.Dropped()
}

// handleAuthExpired is invoked by the pipeline after an unrecoverable
// refresh failure. The store is already cleared; mirror that in memory and
// tell the consumer to navigate to its login entry point.
func (s *Session) handleAuthExpired() {
	s.metrics.Inc(MetricTeardown)
	s.log.Warn("unrecoverable credential failure, tearing session down")
	s.setUnauthenticated()
	s.emit(context.Background(), EventTeardown, "", false, "refresh failed")
	if s.onAuthExpired != nil {
		s.onAuthExpired()
	}
}

// adopt installs user as the signed-in profile and mirrors it into the
// credential store cache.
func (s *Session) adopt(ctx context.Context, user *UserProfile) {
	u := *user

	s.mu.Lock()
	s.user = &u
	s.authenticated = true
	s.lastErr = ""
	s.mu.Unlock()

	raw, err := json.Marshal(&u)
	if err == nil {
		if err := s.store.SetCachedProfile(ctx, string(raw)); err != nil {
			s.log.Warn("mirroring profile into credential store failed", zap.Error(err))
		}
	}
	s.log.Info("session authenticated",
		zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
}

func (s *Session) setUnauthenticated() {
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Session) setLastErr(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

func (s *Session) clearCredentials(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.log.Warn("credential store clear failed", zap.Error(err))
	}
}

func (s *Session) emit(ctx context.Context, typ, userID string, success bool, errMsg string) {
	if s.events == nil {
		return
	}
	if userID == "" {
		s.mu.Lock()
		if s.user != nil {
			userID = s.user.ID
		}
		s.mu.Unlock()
	}
	s.events.Emit(ctx, Event{
		Timestamp: time.Now(),
		Type:      typ,
		UserID:    userID,
		Success:   success,
		Error:     errMsg,
	})
}
