package sessionkit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Login exchanges credentials for a session. On success, the access token
// (and any refresh token returned) plus the user profile are persisted and
// the session becomes authenticated. On failure the previous session state,
// authenticated or not, is left untouched.
func (s *Session) Login(ctx context.Context, req LoginRequest) (*UserProfile, error) {
	return s.authenticate(ctx, s.cfg.Endpoints.Login, req, EventLogin,
		MetricLoginSuccess, MetricLoginFailure)
}

// Register creates an account and signs it in. The contract is symmetric
// with [Session.Login].
func (s *Session) Register(ctx context.Context, req RegisterRequest) (*UserProfile, error) {
	return s.authenticate(ctx, s.cfg.Endpoints.Register, req, EventRegister,
		MetricRegisterSuccess, MetricRegisterFailure)
}

func (s *Session) authenticate(ctx context.Context, path string, body any, eventType string, okMetric, failMetric MetricID) (*UserProfile, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}

	s.setLoading(true)
	defer s.setLoading(false)

	var env apiEnvelope
	if err := s.pipeline.DoJSON(ctx, http.MethodPost, path, body, &env); err != nil {
		s.metrics.Inc(failMetric)
		s.setLastErr(err.Error())
		s.emit(ctx, eventType, "", false, err.Error())
		return nil, err
	}

	payload, err := decodeAuthPayload(env)
	if err != nil {
		s.metrics.Inc(failMetric)
		s.setLastErr(err.Error())
		s.emit(ctx, eventType, "", false, err.Error())
		return nil, err
	}

	if err := s.store.SetAccessToken(ctx, payload.Token); err != nil {
		s.metrics.Inc(failMetric)
		return nil, err
	}
	if payload.RefreshToken != "" {
		if err := s.store.SetRefreshToken(ctx, payload.RefreshToken); err != nil {
			s.log.Warn("persisting refresh token failed", zap.Error(err))
		}
	}
	s.adopt(ctx, payload.User)

	s.metrics.Inc(okMetric)
	s.emit(ctx, eventType, payload.User.ID, true, "")

	u := *payload.User
	return &u, nil
}

// decodeAuthPayload validates a login/register/me success envelope: the
// backend must report success and include both a user and a token.
func decodeAuthPayload(env apiEnvelope) (*authPayload, error) {
	if !env.Success {
		if env.Message != "" {
			return nil, errors.New(env.Message)
		}
		return nil, errors.New("authentication rejected")
	}

	var payload authPayload
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, err
		}
	}
	if payload.User == nil {
		return nil, ErrMissingUser
	}
	if payload.Token == "" {
		return nil, ErrMissingToken
	}
	return &payload, nil
}

// Logout signs the session out. The remote call is best effort: its failure
// is swallowed, and the credential store and in-memory state are cleared
// unconditionally afterwards. Calling Logout twice produces the same
// terminal state as calling it once.
func (s *Session) Logout(ctx context.Context) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}

	s.setLoading(true)
	defer s.setLoading(false)

	if _, err := s.pipeline.Do(ctx, http.MethodPost, s.cfg.Endpoints.Logout, nil); err != nil {
		// Logout must never fail locally because the backend is down.
		s.log.Debug("remote logout failed, continuing teardown", zap.Error(err))
	}

	clearErr := s.store.Clear(ctx)
	s.setUnauthenticated()
	s.setLastErr("")

	s.metrics.Inc(MetricLogout)
	s.emit(ctx, EventLogout, "", true, "")
	s.log.Info("session signed out")

	return clearErr
}
