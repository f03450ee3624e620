// Package token inspects stored access tokens structurally, without
// verifying signatures. The session controller uses it to decide whether a
// persisted token is even worth sending to the identity service.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Plausible reports whether raw could possibly be a live access token:
// non-empty and at least min characters. Anything shorter is treated
// identically to "no token".
func Plausible(raw string, min int) bool {
	if min <= 0 {
		min = 1
	}
	return len(raw) >= min
}

// WellFormed reports whether raw parses as a JWT at all. Signature and
// claims are not verified; this is a local sanity probe, not validation.
func WellFormed(raw string) bool {
	parser := jwt.NewParser()
	_, _, err := parser.ParseUnverified(raw, jwt.MapClaims{})
	return err == nil
}

// ExpiresAt peeks at the unverified exp claim. The second return is false
// when raw is not a JWT or carries no expiry.
func ExpiresAt(raw string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
