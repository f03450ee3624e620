package sessionkit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/visadesk/sessionkit/store"
)

// fakeIdentity is a stub identity service with swappable per-path handlers
// and call counters for the endpoints the session talks to.
type fakeIdentity struct {
	srv *httptest.Server

	meCalls      atomic.Int64
	loginCalls   atomic.Int64
	logoutCalls  atomic.Int64
	refreshCalls atomic.Int64

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
}

func newFakeIdentity(t *testing.T) *fakeIdentity {
	t.Helper()

	f := &fakeIdentity{handlers: map[string]http.HandlerFunc{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/me":
			f.meCalls.Add(1)
		case "/auth/login":
			f.loginCalls.Add(1)
		case "/auth/logout":
			f.logoutCalls.Add(1)
		case "/auth/refresh":
			f.refreshCalls.Add(1)
		}

		f.mu.Lock()
		h := f.handlers[r.URL.Path]
		f.mu.Unlock()
		if h == nil {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeIdentity) handle(path string, h http.HandlerFunc) {
	f.mu.Lock()
	f.handlers[path] = h
	f.mu.Unlock()
}

func testUser() *UserProfile {
	return &UserProfile{
		ID:        "user-42",
		Email:     "amira@example.com",
		FirstName: "Amira",
		LastName:  "Haddad",
		Role:      RoleOfficer,
		IsActive:  true,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAuthSuccess renders the identity service's login/register/me success
// envelope for user.
func writeAuthSuccess(w http.ResponseWriter, user *UserProfile, token, refreshToken string) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"user":         user,
			"token":        token,
			"refreshToken": refreshToken,
		},
	})
}

func newTestSession(t *testing.T, f *fakeIdentity, st store.Store) *Session {
	t.Helper()

	s, err := New().
		WithBaseURL(f.srv.URL).
		WithStore(st).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

// loginTestSession signs the session in through the stub's login endpoint.
func loginTestSession(t *testing.T, f *fakeIdentity, s *Session) *UserProfile {
	t.Helper()

	f.handle("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		writeAuthSuccess(w, testUser(), "granted-access-token-value", "granted-refresh-token")
	})
	user, err := s.Login(context.Background(), LoginRequest{Email: "amira@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return user
}
