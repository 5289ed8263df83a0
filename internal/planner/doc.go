// Package planner turns a JSONL question file into the list of tasks still
// to run. A record whose artifact already exists is skipped without being
// parsed, which makes re-running the same input resume where it stopped.
package planner
