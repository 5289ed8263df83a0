// Package prompt builds the model prompt for a question record. Few-shot
// examples and per-shot-type templates come from a YAML catalog; an API
// label or shot type missing from the catalog is reported as a
// ConstructionError, which the planner treats as a permanent skip.
package prompt
