// Package redact removes credentials from strings before they are logged or
// printed. Batch runs carry a bearer token and a password for their whole
// lifetime, and remote error bodies sometimes echo request headers, so every
// error shown to the user passes through this package first.
package redact

import (
	"regexp"
	"strings"
	"sync"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedTokenPlaceholder      = "[REDACTED_TOKEN]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
)

// rule pairs a pattern with its replacement template (regexp.Expand syntax).
type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// minSecretLength keeps short registered values from blanking unrelated text.
const minSecretLength = 4

var (
	rules = []rule{
		// JWT tokens: three base64url segments with a JSON header
		{
			regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
			RedactedJWTPlaceholder,
		},
		// Authorization header values
		{
			regexp.MustCompile(`(?i)\b(bearer)\s+[A-Za-z0-9_\-.~+/=]{8,}`),
			"${1} " + RedactedTokenPlaceholder,
		},
		// JSON fields carrying secrets, as in sign-in bodies
		{
			regexp.MustCompile(`(?i)"(password|token|auth_token|api_key)"\s*:\s*"[^"]*"`),
			`"${1}":"` + RedactionPlaceholder + `"`,
		},
		// key=value style credentials
		{
			regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[=:]\s*['"]?[^'"&\s,}]{3,}`),
			RedactedCredentialPlaceholder,
		},
		{
			regexp.MustCompile(`(?i)\b(api[_-]?key|token|secret)\s*[=:]\s*['"]?[A-Za-z0-9_\-.~+/]{8,}`),
			RedactedKeyPlaceholder,
		},
		// user:password@ in URLs
		{
			regexp.MustCompile(`://[^/\s:@]+:[^/\s@]+@`),
			"://" + RedactedCredentialPlaceholder + "@",
		},
	}

	secrets []string

	mu sync.RWMutex
)

// RegisterSecret adds a literal value, such as the run's session token, that
// is replaced wherever it appears. Values shorter than four characters are
// ignored.
func RegisterSecret(secret string) {
	if len(secret) < minSecretLength {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	for _, s := range secrets {
		if s == secret {
			return
		}
	}
	secrets = append(secrets, secret)
}

// ResetSecrets forgets every registered secret.
func ResetSecrets() {
	mu.Lock()
	defer mu.Unlock()
	secrets = nil
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	mu.RLock()
	defer mu.RUnlock()

	result := input
	for _, s := range secrets {
		result = strings.ReplaceAll(result, s, RedactionPlaceholder)
	}
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
