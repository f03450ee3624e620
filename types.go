package sessionkit

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Role is the coarse-grained authorization level attached to a profile.
type Role string

const (
	// RoleAdmin may reach every view, including officer views.
	RoleAdmin Role = "admin"
	// RoleOfficer processes applications.
	RoleOfficer Role = "officer"
	// RoleUser is an applicant.
	RoleUser Role = "user"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOfficer, RoleUser:
		return true
	}
	return false
}

// UserProfile is the authenticated user's profile as returned by the
// identity service. It is created on login or register, replaced on profile
// update, and cleared on logout.
type UserProfile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Role        Role   `json:"role"`
	PhoneNumber string `json:"phoneNumber"`
	IsActive    bool   `json:"isActive"`
}

// FullName joins the first and last name, tolerating either being empty.
func (u *UserProfile) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// Initials returns the uppercased first letters of the first and last name,
// falling back to the first letter of the email when both are empty.
func (u *UserProfile) Initials() string {
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
	}
	if b.Len() == 0 && u.Email != "" {
		r, _ := utf8.DecodeRuneInString(u.Email)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// IsAdmin reports whether the profile carries the admin role.
func (u *UserProfile) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsOfficer reports whether the profile may process applications; admins
// count as officers.
func (u *UserProfile) IsOfficer() bool {
	return u.Role == RoleAdmin || u.Role == RoleOfficer
}

// State is a point-in-time snapshot of the session tuple. Authenticated is
// true exactly when User is non-nil. Settled flips to true once the first
// bootstrap check has concluded, whatever its outcome.
type State struct {
	User          *UserProfile
	Authenticated bool
	Loading       bool
	Settled       bool
	Err           string
}

// LoginRequest is the credential payload for [Session.Login].
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for [Session.Register].
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

// UpdateProfileRequest is the payload for [Session.UpdateProfile]. Empty
// fields are sent as-is; the identity service decides merge semantics.
type UpdateProfileRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}
