package sessionkit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// UpdateProfile replaces the signed-in user's profile. On success the new
// profile becomes the session user and is mirrored into the credential
// store cache; on failure the previous profile is left untouched.
func (s *Session) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*UserProfile, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	if !s.isAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	s.setLoading(true)
	defer s.setLoading(false)

	var env apiEnvelope
	if err := s.pipeline.DoJSON(ctx, http.MethodPut, s.cfg.Endpoints.Profile, req, &env); err != nil {
		s.metrics.Inc(MetricProfileUpdateFailure)
		s.setLastErr(err.Error())
		return nil, err
	}

	user, err := decodeUserEnvelope(env)
	if err != nil {
		s.metrics.Inc(MetricProfileUpdateFailure)
		s.setLastErr(err.Error())
		return nil, err
	}

	s.adopt(ctx, user)
	s.metrics.Inc(MetricProfileUpdateSuccess)
	s.emit(ctx, EventProfileUpdate, user.ID, true, "")

	u := *user
	return &u, nil
}

// ChangePassword changes the signed-in user's password.
func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if !s.isAuthenticated() {
		return ErrNotAuthenticated
	}

	body := map[string]string{
		"currentPassword": current,
		"newPassword":     next,
	}
	err := s.simpleCall(ctx, s.cfg.Endpoints.ChangePassword, body)
	if err != nil {
		s.metrics.Inc(MetricPasswordChangeFailure)
		s.emit(ctx, EventPasswordChange, "", false, err.Error())
		return err
	}
	s.metrics.Inc(MetricPasswordChangeSuccess)
	s.emit(ctx, EventPasswordChange, "", true, "")
	return nil
}

// ForgotPassword asks the identity service to start a password reset for
// email. It requires no session.
func (s *Session) ForgotPassword(ctx context.Context, email string) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}

	err := s.simpleCall(ctx, s.cfg.Endpoints.ForgotPassword, map[string]string{"email": email})
	if err != nil {
		return err
	}
	s.metrics.Inc(MetricPasswordResetRequest)
	return nil
}

// ResetPassword completes a password reset with the emailed token. It
// requires no session.
func (s *Session) ResetPassword(ctx context.Context, resetToken, password string) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}

	body := map[string]string{
		"token":    resetToken,
		"password": password,
	}
	err := s.simpleCall(ctx, s.cfg.Endpoints.ResetPassword, body)
	if err != nil {
		s.metrics.Inc(MetricPasswordResetConfirmFailure)
		s.emit(ctx, EventPasswordReset, "", false, err.Error())
		return err
	}
	s.metrics.Inc(MetricPasswordResetConfirmSuccess)
	s.emit(ctx, EventPasswordReset, "", true, "")
	return nil
}

// simpleCall performs a POST whose response carries only {success, message}.
func (s *Session) simpleCall(ctx context.Context, path string, body any) error {
	s.setLoading(true)
	defer s.setLoading(false)

	var env apiEnvelope
	if err := s.pipeline.DoJSON(ctx, http.MethodPost, path, body, &env); err != nil {
		s.setLastErr(err.Error())
		return err
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request rejected"
		}
		s.setLastErr(msg)
		return errors.New(msg)
	}
	return nil
}

func (s *Session) isAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// decodeUserEnvelope validates a success envelope whose data carries a user.
func decodeUserEnvelope(env apiEnvelope) (*UserProfile, error) {
	if !env.Success {
		if env.Message != "" {
			return nil, errors.New(env.Message)
		}
		return nil, errors.New("request rejected")
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
	return payload.User, nil
}
