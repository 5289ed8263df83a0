// Package metrics collects Prometheus metrics for a batch run: request
// attempts and latency against the completion service, task outcomes,
// in-flight tasks and the planner's counts.
//
// A batch run is a short-lived process, so metrics are kept in a private
// registry and written once as a node-exporter textfile at the end of the
// run instead of being served over HTTP.
package metrics
