package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dexxter/dexxter/internal/auth/domain"
	"github.com/dexxter/dexxter/pkg/idx"
	"github.com/dexxter/dexxter/pkg/jwtx"
)

// SessionService mints signed access tokens for principals that have passed
// every required authentication factor.
type SessionService struct {
	Signer jwtx.Signer
	Issuer string
	TTL    time.Duration // session lifetime, DefaultSessionTTL when zero
}

// Issue signs a session token for the principal. The amr slice records which
// factors were used so downstream services can distinguish password-only
// logins from code-verified ones.
func (s *SessionService) Issue(ctx context.Context, p domain.Principal, amr []string) (domain.Session, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	sid := idx.New().String()
	claims := jwtx.NewSessionClaims(p.ID, sid, p.Role, amr, ttl, s.Issuer, p.Username, time.Now())

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return domain.Session{
		Authenticated: true,
		AccessToken:   token,
		TokenType:     "Bearer",
		ExpiresIn:     ttl,
		Role:          p.Role,
	}, nil
}
