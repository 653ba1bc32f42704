package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the default lifetime for session tokens. Long enough
// for an operator work session, short enough to bound a stolen token.
const DefaultSessionTTL = 12 * time.Hour

// Authentication Method Reference values used in the "amr" claim.
const (
	// AMRPassword indicates password-based authentication.
	AMRPassword = "pwd"
	// AMROTP indicates a one-time code was verified.
	AMROTP = "otp"
)

// Claims are session-token claims used across the service, we are keeping
// additive changes to preserve compatibility for later.
type Claims struct {
	jwt.RegisteredClaims

	/* Custom fields */

	// Session ID
	SID string `json:"sid,omitempty"`

	// Role of the authenticated principal ("admin" or "reseller")
	Role string `json:"role,omitempty"`

	// Authentication Methods Reference ["pwd","otp"]
	// This is mainly for debugging purposes but also lets callers require
	// that the second factor was actually completed for admin sessions.
	AMR []string `json:"amr,omitempty"`

	// Username for the authenticated principal
	Username string `json:"username,omitempty"`
}

// NewSessionClaims builds minimally-correct claims for a session token.
func NewSessionClaims(
	subject, sid string,
	role string,
	amr []string,
	ttl time.Duration,
	issuer string,
	username string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:      sid,
		Role:     role,
		AMR:      amr,
		Username: username,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt == nil || now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}

// HasAMR reports whether the given authentication method is present.
func (c *Claims) HasAMR(method string) bool {
	return slices.Contains(c.AMR, method)
}
