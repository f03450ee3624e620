package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestPlausible(t *testing.T) {
	if Plausible("", 20) {
		t.Fatal("empty string reported plausible")
	}
	if Plausible("1234567890123456789", 20) {
		t.Fatal("19 characters passed a 20-minimum")
	}
	if !Plausible("12345678901234567890", 20) {
		t.Fatal("20 characters failed a 20-minimum")
	}
	// A non-positive minimum still rejects the empty string.
	if Plausible("", 0) {
		t.Fatal("empty string passed a zero minimum")
	}
	if !Plausible("x", 0) {
		t.Fatal("one character failed a zero minimum")
	}
}

func TestWellFormed(t *testing.T) {
	if !WellFormed(signedToken(t, jwt.MapClaims{"sub": "user-1"})) {
		t.Fatal("signed token reported malformed")
	}
	if WellFormed("opaque-session-identifier") {
		t.Fatal("opaque string reported well-formed")
	}
	if WellFormed("a.b") {
		t.Fatal("two-segment string reported well-formed")
	}
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signedToken(t, jwt.MapClaims{"exp": exp.Unix()})

	got, ok := ExpiresAt(raw)
	if !ok {
		t.Fatal("expiry not found")
	}
	if !got.Equal(exp) {
		t.Fatalf("expiry %v, want %v", got, exp)
	}

	if _, ok := ExpiresAt(signedToken(t, jwt.MapClaims{"sub": "user-1"})); ok {
		t.Fatal("expiry reported for a token without exp")
	}
	if _, ok := ExpiresAt("not a token"); ok {
		t.Fatal("expiry reported for a non-token")
	}
}
