// Package guard decides whether a requested view may render. It is a small
// state machine over the session controller's snapshot with exactly four
// outcomes: wait for bootstrap, redirect an unauthenticated visitor to the
// login entry point (remembering where they wanted to go), redirect an
// authenticated visitor lacking a required role to the landing area, or
// render.
//
// # Architecture boundaries
//
// The guard performs no network I/O and holds no state of its own beyond
// its redirect targets; every decision derives from a fresh
// [sessionkit.Session] snapshot.
package guard
