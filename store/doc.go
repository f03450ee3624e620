// Package store provides persistent credential storage for the session
// manager: the access token, the refresh token, and the string-serialized
// cached user profile.
//
// # Backends
//
// [Memory] is the default, process-lifetime backend. [File] persists
// credentials as a JSON file so a session survives process restarts.
// [Redis] keeps credentials in a shared Redis instance for deployments
// where several kiosk processes share one operator profile.
//
// # Architecture boundaries
//
// This package is pure key/value access. It never interprets token
// contents, never talks to the identity service, and never decides when a
// credential is valid — those responsibilities belong to the session
// controller and the transport pipeline.
//
// # What this package must NOT do
//
//   - Import sessionkit, transport, or guard (no upward imports).
//   - Parse or validate tokens.
//   - Perform any network call other than Redis itself.
package store
