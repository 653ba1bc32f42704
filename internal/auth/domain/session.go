package domain

import "time"

// Session is what a completed login returns: a signed access token plus the
// metadata clients need to use it.
type Session struct {
	Authenticated bool          `json:"authenticated"` // always true
	AccessToken   string        `json:"access_token"`
	TokenType     string        `json:"token_type"` // typically "Bearer"
	ExpiresIn     time.Duration `json:"expires_in"` // seconds until expiry
	Role          string        `json:"role"`
}
