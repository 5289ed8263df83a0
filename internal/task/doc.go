// Package task runs completion tasks on a bounded pool of workers.
// A failing or panicking task is recorded as a per-task failure and never
// affects its siblings; a run returns only once every task is terminal.
package task
