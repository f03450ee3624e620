// Package sessionkit is the client-side authentication session manager for
// the visa-processing portal. It maintains the signed-in state against the
// remote identity service, attaches credentials to outgoing requests,
// recovers from expired credentials transparently, and feeds the route
// guard that gates which views a visitor may reach.
//
// # Architecture
//
// Three cooperating parts: the request pipeline ([transport.Client]), the
// session controller ([Session]), and the route guard (package guard).
// The guard reads controller state; the controller performs all network I/O
// through the pipeline; the pipeline reads and writes the credential store
// (package store) and talks to the identity service.
//
// # Lifecycle
//
// A [Session] is built once via [New], hydrated with [Session.Bootstrap],
// mutated through the auth operations, and disposed with [Session.Close].
// There is no ambient global state; everything a consumer needs is carried
// by the constructed session object.
package sessionkit
