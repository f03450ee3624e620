// Package transport implements the request pipeline between the session
// manager and the remote identity service: uniform request decoration,
// uniform error normalization, and the single refresh-and-retry protocol.
//
// # Pipeline
//
// Every outbound request is decorated with the bearer access token (when
// the credential store holds one) and a unique X-Request-ID for server-side
// tracing. On a 401 the pipeline refreshes the access token once and
// replays the original request transparently; the caller never observes the
// intermediate 401. Every residual failure is normalized into [*Error].
//
// # Architecture boundaries
//
// The retried flag lives in an [invocation] wrapper owned by the pipeline,
// never on the http.Request itself. The pipeline mutates the credential
// store in exactly one place: the refresh step (new access token on
// success, full clear on refresh failure).
//
// # What this package must NOT do
//
//   - Import sessionkit or guard (no upward imports).
//   - Retry anything other than one refresh-and-replay per original request.
//   - Interpret session state; it only reads and writes credentials.
package transport
