package guard

import (
	sessionkit "github.com/visadesk/sessionkit"
)

// Outcome is the decision for one requested view.
type Outcome uint8

const (
	// OutcomeLoading means the bootstrap check has not settled; render a
	// blocking loading indicator and nothing else.
	OutcomeLoading Outcome = iota
	// OutcomeRedirectLogin means the visitor is not authenticated.
	OutcomeRedirectLogin
	// OutcomeRedirectDefault means the visitor is authenticated but lacks a
	// required role; send them to the landing area, not an error page.
	OutcomeRedirectDefault
	// OutcomeRender means the requested view may render unmodified.
	OutcomeRender
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeRedirectLogin:
		return "redirect-login"
	case OutcomeRedirectDefault:
		return "redirect-default"
	case OutcomeRender:
		return "render"
	}
	return "unknown"
}

// Requirement declares what a route demands. An empty Roles slice means any
// authenticated visitor may enter.
type Requirement struct {
	Roles []sessionkit.Role
}

// Decision is the guard's answer for one requested location.
type Decision struct {
	Outcome Outcome
	// RedirectTo is set for both redirect outcomes.
	RedirectTo string
	// ReturnTo carries the originally requested location on a login
	// redirect so a successful login can send the visitor back.
	ReturnTo string
}

// Guard evaluates route requirements against session state.
type Guard struct {
	session     *sessionkit.Session
	loginPath   string
	defaultPath string
}

// Option customizes a Guard.
type Option func(*Guard)

// WithLoginPath overrides the login entry point (default "/login").
func WithLoginPath(path string) Option {
	return func(g *Guard) { g.loginPath = path }
}

// WithDefaultPath overrides the authenticated landing area (default "/").
func WithDefaultPath(path string) Option {
	return func(g *Guard) { g.defaultPath = path }
}

// New creates a guard reading from session.
func New(session *sessionkit.Session, opts ...Option) *Guard {
	g := &Guard{
		session:     session,
		loginPath:   "/login",
		defaultPath: "/",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate decides what should happen for a visit to requested, a location
// string remembered across the login redirect.
func (g *Guard) Evaluate(requested string, req Requirement) Decision {
	state := g.session.State()

	if !state.Settled {
		return Decision{Outcome: OutcomeLoading}
	}
	if !state.Authenticated {
		return Decision{
			Outcome:    OutcomeRedirectLogin,
			RedirectTo: g.loginPath,
			ReturnTo:   requested,
		}
	}
	if len(req.Roles) > 0 && !g.session.HasRole(req.Roles...) {
		return Decision{
			Outcome:    OutcomeRedirectDefault,
			RedirectTo: g.defaultPath,
		}
	}
	return Decision{Outcome: OutcomeRender}
}
