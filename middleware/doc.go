// Package middleware adapts the route guard to net/http for locally served
// portal UIs.
//
// # Guards
//
//   - [Guard] — wraps a handler with a guard.Requirement; loading maps to
//     503 with Retry-After, the login redirect carries return_to, the role
//     redirect goes to the landing area.
//   - [DecisionFromContext] — retrieves the guard decision for handlers
//     that want to inspect it.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into guard decisions. It makes no
// authorization decision itself — everything is delegated to
// guard.Evaluate, which only reads session state.
package middleware
