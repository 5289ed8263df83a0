// Package generation defines the boundary between the batch pipeline and
// the remote completion service. It holds the Completer and Authenticator
// interfaces implemented by platform adapters and the sentinel errors used
// to classify their failures.
package generation
