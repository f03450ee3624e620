package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/visadesk/sessionkit/store"
)

func newTestClient(t *testing.T, baseURL string, creds CredentialSource, hooks Hooks) *Client {
	t.Helper()

	c, err := New(Config{
		BaseURL:     baseURL,
		Credentials: creds,
		Hooks:       hooks,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func seededStore(t *testing.T, access, refresh string) *store.Memory {
	t.Helper()

	s := store.NewMemory()
	ctx := context.Background()
	if access != "" {
		if err := s.SetAccessToken(ctx, access); err != nil {
			t.Fatalf("seed access token: %v", err)
		}
	}
	if refresh != "" {
		if err := s.SetRefreshToken(ctx, refresh); err != nil {
			t.Fatalf("seed refresh token: %v", err)
		}
	}
	return s
}

func TestPipelineAttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	creds := seededStore(t, "stored-access-token-value", "")
	c := newTestClient(t, srv.URL, creds, Hooks{})

	if _, err := c.Do(context.Background(), http.MethodGet, "/auth/me", nil); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if gotAuth != "Bearer stored-access-token-value" {
		t.Fatalf("unexpected Authorization header %q", gotAuth)
	}
	if gotID == "" {
		t.Fatal("request ID header missing")
	}
	if !strings.Contains(gotID, "-") {
		t.Fatalf("request ID %q missing timestamp-suffix shape", gotID)
	}
}

func TestPipelineOmitsBearerWhenTokenAbsent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, store.NewMemory(), Hooks{})

	if _, err := c.Do(context.Background(), http.MethodGet, "/ping", nil); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestRequestIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen[r.Header.Get("X-Request-ID")] = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, store.NewMemory(), Hooks{})

	const n = 20
	for i := 0; i < n; i++ {
		if _, err := c.Do(context.Background(), http.MethodGet, "/ping", nil); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
	}
	if len(seen) != n {
		t.Fatalf("expected %d unique request IDs, got %d", n, len(seen))
	}
}

func TestRetryAfterRefreshIsTransparent(t *testing.T) {
	var resourceCalls, refreshCalls atomic.Int64
	var retries atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/resource", func(w http.ResponseWriter, r *http.Request) {
		if resourceCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer fresh-access-token" {
			t.Errorf("retried request carried %q, want refreshed bearer", got)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refreshToken"] != "the-refresh-token" {
			t.Errorf("refresh call carried token %q", body["refreshToken"])
		}
		_, _ = w.Write([]byte(`{"data":{"token":"fresh-access-token"}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	creds := seededStore(t, "stale-access-token-value", "the-refresh-token")
	c := newTestClient(t, srv.URL, creds, Hooks{
		OnRetry: func() { retries.Add(1) },
	})

	resp, err := c.Do(context.Background(), http.MethodGet, "/resource", nil)
	if err != nil {
		t.Fatalf("caller observed an error despite successful retry: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Fatalf("caller observed status %d, want the retried 200", resp.Status)
	}
	if got := resourceCalls.Load(); got != 2 {
		t.Fatalf("resource called %d times, want 2", got)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("refresh called %d times, want 1", got)
	}
	if got := retries.Load(); got != 1 {
		t.Fatalf("OnRetry fired %d times, want 1", got)
	}

	tok, _ := creds.AccessToken(context.Background())
	if tok != "fresh-access-token" {
		t.Fatalf("store holds %q, want refreshed token", tok)
	}
}

func TestSecond401AfterRefreshSurfaces(t *testing.T) {
	var resourceCalls, refreshCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/resource", func(w http.ResponseWriter, _ *http.Request) {
		resourceCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"still not welcome"}`))
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		_, _ = w.Write([]byte(`{"data":{"token":"fresh-access-token"}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	creds := seededStore(t, "stale-access-token-value", "the-refresh-token")
	c := newTestClient(t, srv.URL, creds, Hooks{})

	_, err := c.Do(context.Background(), http.MethodGet, "/resource", nil)
	if err == nil {
		t.Fatal("expected the second 401 to surface")
	}
	te, ok := AsError(err)
	if !ok {
		t.Fatalf("error is not the normalized shape: %v", err)
	}
	if te.Status != http.StatusUnauthorized {
		t.Fatalf("surfaced status %d, want 401", te.Status)
	}
	if te.Message != "still not welcome" {
		t.Fatalf("surfaced message %q", te.Message)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("refresh called %d times, want exactly 1", got)
	}
	if got := resourceCalls.Load(); got != 2 {
		t.Fatalf("resource called %d times, want 2", got)
	}
}

func TestRefreshFailureClearsStoreAndSignalsExpiry(t *testing.T) {
	var expired atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/resource", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	creds := seededStore(t, "stale-access-token-value", "worn-out-refresh-token")
	c := newTestClient(t, srv.URL, creds, Hooks{
		OnAuthExpired: func() { expired.Add(1) },
	})

	_, err := c.Do(context.Background(), http.MethodGet, "/resource", nil)
	if err == nil {
		t.Fatal("expected an error after failed refresh")
	}
	if got := expired.Load(); got != 1 {
		t.Fatalf("OnAuthExpired fired %d times, want 1", got)
	}

	ctx := context.Background()
	if tok, _ := creds.AccessToken(ctx); tok != "" {
		t.Fatalf("access token survived teardown: %q", tok)
	}
	if tok, _ := creds.RefreshToken(ctx); tok != "" {
		t.Fatalf("refresh token survived teardown: %q", tok)
	}
}

func TestNo401RetryWithoutRefreshToken(t *testing.T) {
	var resourceCalls, refreshCalls atomic.Int64
	var expired atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/resource", func(w http.ResponseWriter, _ *http.Request) {
		resourceCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	creds := seededStore(t, "stale-access-token-value", "")
	c := newTestClient(t, srv.URL, creds, Hooks{
		OnAuthExpired: func() { expired.Add(1) },
	})

	_, err := c.Do(context.Background(), http.MethodGet, "/resource", nil)
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected normalized 401, got %v", err)
	}
	if got := refreshCalls.Load(); got != 0 {
		t.Fatalf("refresh endpoint called %d times without a refresh token", got)
	}
	if got := resourceCalls.Load(); got != 1 {
		t.Fatalf("resource called %d times, want 1", got)
	}
	if got := expired.Load(); got != 0 {
		t.Fatalf("OnAuthExpired fired %d times; a plain 401 is not teardown", got)
	}
}

func TestNetworkErrorNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := newTestClient(t, srv.URL, store.NewMemory(), Hooks{})

	_, err := c.Do(context.Background(), http.MethodGet, "/ping", nil)
	te, ok := AsError(err)
	if !ok {
		t.Fatalf("network failure not normalized: %v", err)
	}
	if te.Status != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500 default", te.Status)
	}
	if te.Message != DefaultErrorMessage {
		t.Fatalf("message %q, want default", te.Message)
	}
	if len(te.Errors) == 0 {
		t.Fatal("underlying cause missing from Errors")
	}
}

func TestDoJSONDecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, store.NewMemory(), Hooks{})

	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.DoJSON(context.Background(), http.MethodGet, "/ping", nil, &out); err != nil {
		t.Fatalf("DoJSON failed: %v", err)
	}
	if !out.Success || out.Message != "ok" {
		t.Fatalf("decoded %+v", out)
	}
}
