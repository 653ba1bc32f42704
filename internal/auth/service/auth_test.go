package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dexxter/dexxter/internal/auth/domain"
	"github.com/dexxter/dexxter/pkg/cryptox"
	"github.com/dexxter/dexxter/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestBeginAdminLoginIssuesChallenge(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sender := &fakeSender{}
	svc := newTestService(t, st, sender)

	admin := seedPrincipal(t, st, "alice", "correct horse", domain.RoleAdmin, "alice@example.com")

	resp, err := svc.BeginAdminLogin(ctx, "alice", "correct horse")
	require.NoError(t, err)
	require.True(t, resp.RequiresCode)
	require.NotEmpty(t, resp.CodeToken)
	require.Equal(t, "a***@example.com", resp.MaskedEmail)

	// The response never carries the code itself; it went out by email.
	require.Len(t, sender.codes, 1)
	require.Len(t, sender.lastCode(), 6)
	require.Equal(t, "alice@example.com", sender.ToAddr)
	require.NotContains(t, resp.CodeToken, sender.lastCode())

	stored, err := st.OneTimeCodes().GetLatestValidCode(ctx, admin.ID, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, sender.lastCode(), stored.Code)
}

func TestBeginAdminLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sender := &fakeSender{}
	svc := newTestService(t, st, sender)

	seedPrincipal(t, st, "alice", "correct horse", domain.RoleAdmin, "alice@example.com")

	// Wrong password and unknown username both produce the same error, so a
	// caller cannot use the response to learn which usernames exist.
	_, err := svc.BeginAdminLogin(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.BeginAdminLogin(ctx, "nobody", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.Empty(t, sender.codes)
}

func TestBeginAdminLoginIgnoresResellers(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sender := &fakeSender{}
	svc := newTestService(t, st, sender)

	// Same username, reseller role. The admin endpoint must not match it.
	seedPrincipal(t, st, "bob", "hunter2", domain.RoleReseller, "")

	_, err := svc.BeginAdminLogin(ctx, "bob", "hunter2")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestBeginAdminLoginDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sender := &fakeSender{failing: true}
	svc := newTestService(t, st, sender)

	admin := seedPrincipal(t, st, "alice", "correct horse", domain.RoleAdmin, "alice@example.com")

	_, err := svc.BeginAdminLogin(ctx, "alice", "correct horse")
	require.ErrorIs(t, err, ErrDeliveryFailure)

	// The undelivered code must not remain redeemable.
	_, err = st.OneTimeCodes().GetLatestValidCode(ctx, admin.ID, time.Now().UTC())
	require.Error(t, err)
}

func TestVerifyAdminCodeHappyPath(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sender := &fakeSender{}
	svc := newTestService(t, st, sender)

	seedPrincipal(t, st, "alice", "correct horse", domain.RoleAdmin, "alice@example.com")

	resp, err := svc.BeginAdminLogin(ctx, "alice", "correct horse")
	require.NoError(t, err)

	session, err := svc.VerifyAdminCode(ctx, resp.CodeToken, sender.lastCode())
	require.NoError(t, err)
	require.True(t, session.Authenticated)
	require.NotEmpty(t, session.AccessToken)
	require.Equal(t, "Bearer", session.TokenType)
	require.Equal(t, domain.RoleAdmin, session.Role)
}

func TestVerifyAdminCodeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sender := &fakeSender{}
	svc := newTestService(t, st, sender)

	seedPrincipal(t, st, "alice", "correct horse", domain.RoleAdmin, "alice@example.com")

	resp, err := svc.BeginAdminLogin(ctx, "alice", "correct horse")
	require.NoError(t, err)
	code := sender.lastCode()

	_, err = svc.VerifyAdminCode(ctx, resp.CodeToken, code)
	require.NoError(t, err)

	// The pending login is gone and the code is consumed; replaying either
	// fails.
	_, err = svc.VerifyAdminCode(ctx, resp.CodeToken, code)
	require.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestVerifyAdminCodeRejectsUnknownToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sender := &fakeSender{}
	svc := newTestService(t, st, sender)

	seedPrincipal(t, st, "alice", "correct horse", domain.RoleAdmin, "alice@example.com")

	_, err := svc.BeginAdminLogin(ctx, "alice", "correct horse")
	require.NoError(t, err)

	forged, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)

	_, err = svc.VerifyAdminCode(ctx, forged, sender.lastCode())
	require.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestVerifyAdminCodeRejectsWrongCode(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sender := &fakeSender{}
	svc := newTestService(t, st, sender)

	seedPrincipal(t, st, "alice", "correct horse", domain.RoleAdmin, "alice@example.com")

	resp, err := svc.BeginAdminLogin(ctx, "alice", "correct horse")
	require.NoError(t, err)

	wrong := "000000"
	if sender.lastCode() == wrong {
		wrong = "000001"
	}

	_, err = svc.VerifyAdminCode(ctx, resp.CodeToken, wrong)
	require.ErrorIs(t, err, ErrInvalidOrExpiredCode)

	// A wrong guess does not burn the real code.
	_, err = svc.VerifyAdminCode(ctx, resp.CodeToken, sender.lastCode())
	require.NoError(t, err)
}

func TestVerifyAdminCodeRejectsExpiredCode(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sender := &fakeSender{}
	svc := newTestService(t, st, sender)

	admin := seedPrincipal(t, st, "alice", "correct horse", domain.RoleAdmin, "alice@example.com")

	resp, err := svc.BeginAdminLogin(ctx, "alice", "correct horse")
	require.NoError(t, err)

	// Age out the stored code without touching the pending login.
	require.NoError(t, st.OneTimeCodes().InvalidateCodes(ctx, admin.ID))
	past := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, st.OneTimeCodes().CreateOneTimeCode(ctx, domain.OneTimeCode{
		ID:          idx.New().String(),
		PrincipalID: admin.ID,
		Code:        sender.lastCode(),
		IssuedAt:    past.Add(-time.Minute),
		ExpiresAt:   past,
	}))

	_, err = svc.VerifyAdminCode(ctx, resp.CodeToken, sender.lastCode())
	require.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestNewerCodeSupersedesOlder(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sender := &fakeSender{}
	svc := newTestService(t, st, sender)

	seedPrincipal(t, st, "alice", "correct horse", domain.RoleAdmin, "alice@example.com")

	_, err := svc.BeginAdminLogin(ctx, "alice", "correct horse")
	require.NoError(t, err)
	first := sender.lastCode()

	resp2, err := svc.BeginAdminLogin(ctx, "alice", "correct horse")
	require.NoError(t, err)
	second := sender.lastCode()

	if first != second {
		// The earlier code is dead even though its window has not passed.
		_, err = svc.VerifyAdminCode(ctx, resp2.CodeToken, first)
		require.ErrorIs(t, err, ErrInvalidOrExpiredCode)
	}

	_, err = svc.VerifyAdminCode(ctx, resp2.CodeToken, second)
	require.NoError(t, err)
}

func TestVerifyAdminCodeLocksAfterRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sender := &fakeSender{}
	svc := newTestService(t, st, sender)

	seedPrincipal(t, st, "alice", "correct horse", domain.RoleAdmin, "alice@example.com")

	resp, err := svc.BeginAdminLogin(ctx, "alice", "correct horse")
	require.NoError(t, err)

	wrong := "000000"
	if sender.lastCode() == wrong {
		wrong = "000001"
	}

	for i := 0; i < domain.MaxChallengeAttempts-1; i++ {
		_, err = svc.VerifyAdminCode(ctx, resp.CodeToken, wrong)
		require.ErrorIs(t, err, ErrInvalidOrExpiredCode)
	}

	_, err = svc.VerifyAdminCode(ctx, resp.CodeToken, wrong)
	require.ErrorIs(t, err, ErrTooManyAttempts)

	// The pending login was destroyed, so even the right code is useless now.
	_, err = svc.VerifyAdminCode(ctx, resp.CodeToken, sender.lastCode())
	require.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestConcurrentVerifyConsumesCodeOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sender := &fakeSender{}
	svc := newTestService(t, st, sender)

	seedPrincipal(t, st, "alice", "correct horse", domain.RoleAdmin, "alice@example.com")

	resp, err := svc.BeginAdminLogin(ctx, "alice", "correct horse")
	require.NoError(t, err)
	code := sender.lastCode()

	const workers = 8
	var wg sync.WaitGroup
	results := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.VerifyAdminCode(ctx, resp.CodeToken, code)
		}(i)
	}
	wg.Wait()

	var successes int
	for _, res := range results {
		if res == nil {
			successes++
		}
	}
	require.Equal(t, 1, successes, "exactly one concurrent submission may win")
}

func TestLoginReseller(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sender := &fakeSender{}
	svc := newTestService(t, st, sender)

	seedPrincipal(t, st, "bob", "hunter2", domain.RoleReseller, "")

	session, err := svc.LoginReseller(ctx, "bob", "hunter2")
	require.NoError(t, err)
	require.True(t, session.Authenticated)
	require.Equal(t, domain.RoleReseller, session.Role)

	// No code is ever dispatched for resellers.
	require.Empty(t, sender.codes)

	_, err = svc.LoginReseller(ctx, "bob", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.LoginReseller(ctx, "nobody", "hunter2")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginResellerIgnoresAdmins(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestService(t, st, &fakeSender{})

	seedPrincipal(t, st, "alice", "correct horse", domain.RoleAdmin, "alice@example.com")

	// Admins cannot skip their second factor by using the reseller endpoint.
	_, err := svc.LoginReseller(ctx, "alice", "correct horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
