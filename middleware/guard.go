package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/visadesk/sessionkit/guard"
)

type decisionContextKey struct{}

// ReturnToParam is the query parameter carrying the originally requested
// location on a login redirect.
const ReturnToParam = "return_to"

// DecisionFromContext retrieves the guard decision stored for the current
// request.
func DecisionFromContext(ctx context.Context) (guard.Decision, bool) {
	d, ok := ctx.Value(decisionContextKey{}).(guard.Decision)
	return d, ok
}

// Guard gates next behind the route guard. The decision is evaluated per
// request against the current session snapshot.
func Guard(g *guard.Guard, req guard.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			decision := g.Evaluate(r.URL.RequestURI(), req)

			switch decision.Outcome {
			case guard.OutcomeLoading:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "session check in progress", http.StatusServiceUnavailable)

			case guard.OutcomeRedirectLogin:
				target := decision.RedirectTo
				if decision.ReturnTo != "" {
					target += "?" + ReturnToParam + "=" + url.QueryEscape(decision.ReturnTo)
				}
				http.Redirect(w, r, target, http.StatusFound)

			case guard.OutcomeRedirectDefault:
				http.Redirect(w, r, decision.RedirectTo, http.StatusFound)

			case guard.OutcomeRender:
				ctx := context.WithValue(r.Context(), decisionContextKey{}, decision)
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}
