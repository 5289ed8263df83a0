// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config file, environment variables and
// command-line flags. It resolves everything once at startup, including the
// default credentials, so business logic never reads ambient state.
package config
