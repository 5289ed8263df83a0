package domain

import "time"

// AuthSession holds the bearer token obtained once per run. It is shared
// read-only by every worker and never refreshed.
type AuthSession struct {
	Token    string
	IssuedAt time.Time
	// ExpiresAt is zero when the token does not advertise an expiry.
	ExpiresAt time.Time
}

// NewAuthSession creates a session issued at the given time.
func NewAuthSession(token string, issuedAt time.Time) (AuthSession, error) {
	if token == "" {
		return AuthSession{}, ErrEmptyToken
	}
	return AuthSession{Token: token, IssuedAt: issuedAt}, nil
}

// ExpiresWithin reports whether the session is known to expire before
// now+d. Sessions without a known expiry never do.
func (s AuthSession) ExpiresWithin(now time.Time, d time.Duration) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !s.ExpiresAt.After(now.Add(d))
}
