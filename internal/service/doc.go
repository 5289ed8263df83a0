// Package service orchestrates a batch run: it authenticates once, plans
// the remaining records, turns them into completion tasks and dispatches
// them on the worker pool. Collaborators are injected through
// constructors, so tests can swap the HTTP client or the store freely.
package service
