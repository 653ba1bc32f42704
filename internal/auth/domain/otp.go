package domain

import "time"

// OneTimeCode is a stored 6-digit verification code emailed to an admin
// during login. A code is valid for a short window, can be consumed at most
// once, and is superseded by any newer code issued for the same principal.
type OneTimeCode struct {
	ID          string // ULID
	PrincipalID string
	Code        string // 6 decimal digits, leading zeros preserved
	Consumed    bool
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// IsExpired returns true once the code's validity window has passed.
func (c *OneTimeCode) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// LoginChallenge represents a pending admin login that has passed the
// password check but not yet the code check. The client holds an opaque
// token; only its fingerprint is stored.
type LoginChallenge struct {
	ID          string // ULID
	PrincipalID string
	TokenHash   string // deterministic fingerprint (base64url SHA-256)
	Attempts    int    // failed code submissions (max 5 to prevent brute force)
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// MaxChallengeAttempts caps failed code submissions per pending login.
const MaxChallengeAttempts = 5

// ChallengeResponse is returned when an admin's password checks out and a
// code has been dispatched to their email address.
type ChallengeResponse struct {
	RequiresCode bool   `json:"requires_code"` // always true
	CodeToken    string `json:"code_token"`    // opaque reference to the pending login
	MaskedEmail  string `json:"masked_email"`  // where the code was sent, masked
}
