package model

import "time"

// Credential is one issued access token for a client identity. Rows are
// append-only: a renewal inserts a new row and the previous one is simply
// superseded, never mutated or deleted.
type Credential struct {
	ID           int64
	ClientID     string
	ClientSecret string
	AccessToken  string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// ValidAt reports whether the credential is still usable at the given
// instant. Validity is purely a function of the stored expiry; no upstream
// call is needed to check it.
func (c Credential) ValidAt(now time.Time) bool {
	return c.ExpiresAt.After(now)
}

// TokenGrant is the upstream token endpoint's answer to a
// client_credentials request.
type TokenGrant struct {
	AccessToken string
	ExpiresIn   int // Lifetime in seconds from the moment of issue.
}
