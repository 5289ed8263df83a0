// Package puter implements the generation.Authenticator and
// generation.Completer interfaces against Puter's HTTP driver API.
//
// This package is an infrastructure adapter: it owns the wire format of the
// sign-in and driver-call endpoints and the retry policy of completion
// requests, and hands domain types back to the rest of the application.
//
// Key components:
//
// 1. Authentication:
//   - POST /auth/sign-in exchanges a username and password for a bearer token
//   - Failures are fatal and never retried (AuthError)
//   - JWT claims, when present, give the session's issue and expiry times
//
// 2. Completion:
//   - POST /drivers/call with the "complete" method of the chat interface
//   - Every failure is retried after base + U[0, jitter) with a per-call budget
//   - The sleep holds the worker slot; a delayed-retry queue would free it
//
// 3. Response Processing:
//   - A response succeeds when it is 2xx and well-formed JSON
//   - ExtractContent reads the answer text defensively and never fails
package puter
