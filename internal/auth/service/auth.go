package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dexxter/dexxter/internal/auth/domain"
	"github.com/dexxter/dexxter/internal/auth/notify"
	"github.com/dexxter/dexxter/internal/auth/store"
	"github.com/dexxter/dexxter/pkg/cryptox"
	"github.com/dexxter/dexxter/pkg/idx"
	"github.com/dexxter/dexxter/pkg/jwtx"
	"github.com/dexxter/dexxter/pkg/slogx"
)

const (
	// DefaultCodeTTL is how long an emailed code stays valid.
	DefaultCodeTTL = 60 * time.Second

	// DefaultChallengeTTL bounds how long a pending admin login may sit
	// between the password step and the code step.
	DefaultChallengeTTL = 5 * time.Minute
)

var (
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrDeliveryFailure      = errors.New("delivery_failure")
	ErrInvalidOrExpiredCode = errors.New("invalid_or_expired_code")
	ErrTooManyAttempts      = errors.New("too_many_attempts")
)

// AuthService drives both login flows: admins go through password plus an
// emailed one-time code, resellers through password only.
type AuthService struct {
	Store    store.Store
	Sessions *SessionService
	Sender   notify.CodeSender

	CodeTTL      time.Duration // DefaultCodeTTL when zero
	ChallengeTTL time.Duration // DefaultChallengeTTL when zero

	dummyHashOnce sync.Once
	dummyHash     string
}

func (s *AuthService) codeTTL() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return DefaultCodeTTL
}

func (s *AuthService) challengeTTL() time.Duration {
	if s.ChallengeTTL > 0 {
		return s.ChallengeTTL
	}
	return DefaultChallengeTTL
}

// verifyAgainstDummy burns an argon2 verification against a throwaway hash
// so that lookups of unknown usernames take as long as real password checks.
func (s *AuthService) verifyAgainstDummy(password string) {
	s.dummyHashOnce.Do(func() {
		h, err := cryptox.HashPassword(idx.New().String())
		if err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash != "" {
		_ = cryptox.VerifyPassword(password, s.dummyHash)
	}
}

// BeginAdminLogin checks an admin's password and, on success, emails them a
// one-time code and returns an opaque token referencing the pending login.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) BeginAdminLogin(ctx context.Context, username, password string) (domain.ChallengeResponse, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	principal, err := s.Store.Principals().GetPrincipalByUsername(ctx, username, domain.RoleAdmin)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.verifyAgainstDummy(password)
			return domain.ChallengeResponse{}, ErrInvalidCredentials
		}
		return domain.ChallengeResponse{}, err
	}

	if err := cryptox.VerifyPassword(password, principal.PasswordHash); err != nil {
		l.Info("admin password check failed", slog.String("username", username))
		return domain.ChallengeResponse{}, ErrInvalidCredentials
	}

	code, err := generateOTP()
	if err != nil {
		return domain.ChallengeResponse{}, err
	}

	record := domain.OneTimeCode{
		ID:          idx.New().String(),
		PrincipalID: principal.ID,
		Code:        code,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.codeTTL()),
	}
	if err := s.Store.OneTimeCodes().CreateOneTimeCode(ctx, record); err != nil {
		return domain.ChallengeResponse{}, fmt.Errorf("failed to store one-time code: %w", err)
	}

	if err := s.Sender.SendCode(ctx, principal.Email, code, s.codeTTL()); err != nil {
		// A code the admin never received must not stay redeemable.
		if invErr := s.Store.OneTimeCodes().InvalidateCodes(ctx, principal.ID); invErr != nil {
			l.Error("failed to invalidate undelivered code", slog.String("error", invErr.Error()))
		}
		l.Error("one-time code delivery failed",
			slog.String("username", username),
			slog.String("error", err.Error()))
		return domain.ChallengeResponse{}, ErrDeliveryFailure
	}

	codeToken, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.ChallengeResponse{}, fmt.Errorf("failed to generate login token: %w", err)
	}

	challenge := domain.LoginChallenge{
		ID:          idx.New().String(),
		PrincipalID: principal.ID,
		TokenHash:   cryptox.FingerprintToken(codeToken),
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.challengeTTL()),
	}
	if err := s.Store.LoginChallenges().CreateLoginChallenge(ctx, challenge); err != nil {
		return domain.ChallengeResponse{}, fmt.Errorf("failed to store login challenge: %w", err)
	}

	l.Info("admin login challenge issued", slog.String("principal_id", principal.ID))

	return domain.ChallengeResponse{
		RequiresCode: true,
		CodeToken:    codeToken,
		MaskedEmail:  maskAddress(principal.Email),
	}, nil
}

// VerifyAdminCode completes a pending admin login. The submitted code must
// match the principal's newest outstanding code; success consumes the code so
// replays of it fail. After too many wrong submissions the pending login is
// destroyed and the admin must start over.
func (s *AuthService) VerifyAdminCode(ctx context.Context, codeToken, code string) (domain.Session, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	hash := cryptox.FingerprintToken(codeToken)
	challenge, err := s.Store.LoginChallenges().GetLoginChallengeByTokenHash(ctx, hash, now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrInvalidOrExpiredCode
		}
		return domain.Session{}, err
	}

	if challenge.Attempts >= domain.MaxChallengeAttempts {
		return domain.Session{}, ErrTooManyAttempts
	}

	ok, err := s.Store.OneTimeCodes().ConsumeOneTimeCode(ctx, challenge.PrincipalID, code, now)
	if err != nil {
		return domain.Session{}, err
	}
	if !ok {
		updated, incErr := s.Store.LoginChallenges().IncrementLoginChallengeAttempts(ctx, challenge.ID)
		if incErr != nil && !errors.Is(incErr, store.ErrNotFound) {
			return domain.Session{}, incErr
		}
		if incErr == nil && updated.Attempts >= domain.MaxChallengeAttempts {
			_ = s.Store.LoginChallenges().DeleteLoginChallenge(ctx, challenge.ID)
			l.Info("admin login locked after repeated bad codes", slog.String("principal_id", challenge.PrincipalID))
			return domain.Session{}, ErrTooManyAttempts
		}
		return domain.Session{}, ErrInvalidOrExpiredCode
	}

	if err := s.Store.LoginChallenges().DeleteLoginChallenge(ctx, challenge.ID); err != nil {
		l.Error("failed to delete completed login challenge", slog.String("error", err.Error()))
	}

	principal, err := s.Store.Principals().GetPrincipalByID(ctx, challenge.PrincipalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrInvalidOrExpiredCode
		}
		return domain.Session{}, err
	}

	l.Info("admin login completed", slog.String("principal_id", principal.ID))

	return s.Sessions.Issue(ctx, principal, []string{jwtx.AMRPassword, jwtx.AMROTP})
}

// LoginReseller authenticates a reseller with password only. No second
// factor applies to the reseller role.
func (s *AuthService) LoginReseller(ctx context.Context, username, password string) (domain.Session, error) {
	l := slogx.FromContext(ctx)

	principal, err := s.Store.Principals().GetPrincipalByUsername(ctx, username, domain.RoleReseller)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.verifyAgainstDummy(password)
			return domain.Session{}, ErrInvalidCredentials
		}
		return domain.Session{}, err
	}

	if err := cryptox.VerifyPassword(password, principal.PasswordHash); err != nil {
		l.Info("reseller password check failed", slog.String("username", username))
		return domain.Session{}, ErrInvalidCredentials
	}

	l.Info("reseller login completed", slog.String("principal_id", principal.ID))

	return s.Sessions.Issue(ctx, principal, []string{jwtx.AMRPassword})
}
