// Package store defines the persistence boundary for completion artifacts.
// The planner only asks whether an artifact exists; completion tasks write
// new ones. Implementations live under internal/platform.
package store
