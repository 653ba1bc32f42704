package authsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// newFlowServer fakes the auth endpoints with a fixed valid code so the flow
// machine can be exercised without a real backend.
func newFlowServer(t *testing.T, validCode string) *httptest.Server {
	t.Helper()

	attempts := 0
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/auth/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Password != "correct horse" {
			ErrInvalidCredentials.WriteError(w)
			return
		}
		_ = json.NewEncoder(w).Encode(ChallengeResponse{
			RequiresCode: true,
			CodeToken:    "token-1",
			MaskedEmail:  "a***@example.com",
		})
	})

	mux.HandleFunc("POST /v1/auth/admin/verify-code", func(w http.ResponseWriter, r *http.Request) {
		var req VerifyCodeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "token-1", req.CodeToken)

		if req.Code != validCode {
			attempts++
			if attempts >= 5 {
				ErrTooManyAttempts.WriteError(w)
				return
			}
			ErrInvalidOrExpiredCode.WriteError(w)
			return
		}
		_ = json.NewEncoder(w).Encode(SessionResponse{
			Authenticated: true,
			AccessToken:   "jwt",
			TokenType:     "Bearer",
			ExpiresIn:     3600,
			Role:          "admin",
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginFlowHappyPath(t *testing.T) {
	srv := newFlowServer(t, "482913")
	flow := NewLoginFlow(NewSDKClient(srv.URL))
	ctx := context.Background()

	require.Equal(t, FlowIdle, flow.State())

	require.NoError(t, flow.SubmitCredentials(ctx, "alice", "correct horse"))
	require.Equal(t, FlowAwaitingCode, flow.State())
	require.Equal(t, "a***@example.com", flow.MaskedEmail())

	require.NoError(t, flow.SubmitCode(ctx, "482913"))
	require.Equal(t, FlowCompleted, flow.State())
	require.NotNil(t, flow.Session())
	require.Equal(t, "admin", flow.Session().Role)
}

func TestLoginFlowBadPasswordReturnsToIdle(t *testing.T) {
	srv := newFlowServer(t, "482913")
	flow := NewLoginFlow(NewSDKClient(srv.URL))
	ctx := context.Background()

	err := flow.SubmitCredentials(ctx, "alice", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, ErrorCodeInvalidCredentials, apiErr.Code)

	// Retry is possible without restarting anything.
	require.Equal(t, FlowIdle, flow.State())
	require.NoError(t, flow.SubmitCredentials(ctx, "alice", "correct horse"))
}

func TestLoginFlowWrongCodeStaysOnCodeStep(t *testing.T) {
	srv := newFlowServer(t, "482913")
	flow := NewLoginFlow(NewSDKClient(srv.URL))
	ctx := context.Background()

	require.NoError(t, flow.SubmitCredentials(ctx, "alice", "correct horse"))

	err := flow.SubmitCode(ctx, "000000")
	require.Error(t, err)
	require.Equal(t, FlowAwaitingCode, flow.State())

	require.NoError(t, flow.SubmitCode(ctx, "482913"))
	require.Equal(t, FlowCompleted, flow.State())
}

func TestLoginFlowLockoutDropsToIdle(t *testing.T) {
	srv := newFlowServer(t, "482913")
	flow := NewLoginFlow(NewSDKClient(srv.URL))
	ctx := context.Background()

	require.NoError(t, flow.SubmitCredentials(ctx, "alice", "correct horse"))

	for i := 0; i < 4; i++ {
		err := flow.SubmitCode(ctx, "000000")
		require.Error(t, err)
		require.Equal(t, FlowAwaitingCode, flow.State())
	}

	err := flow.SubmitCode(ctx, "000000")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, ErrorCodeTooManyAttempts, apiErr.Code)
	require.Equal(t, FlowIdle, flow.State())
}

func TestLoginFlowValidation(t *testing.T) {
	srv := newFlowServer(t, "482913")
	flow := NewLoginFlow(NewSDKClient(srv.URL))
	ctx := context.Background()

	require.ErrorIs(t, flow.SubmitCredentials(ctx, "", "pw"), ErrEmptyField)
	require.ErrorIs(t, flow.SubmitCredentials(ctx, "alice", ""), ErrEmptyField)
	require.ErrorIs(t, flow.SubmitCode(ctx, "482913"), ErrFlowWrongState)

	require.NoError(t, flow.SubmitCredentials(ctx, "alice", "correct horse"))
	require.ErrorIs(t, flow.SubmitCode(ctx, "12345"), ErrMalformedCode)
	require.ErrorIs(t, flow.SubmitCode(ctx, "12345a"), ErrMalformedCode)
	require.ErrorIs(t, flow.SubmitCredentials(ctx, "alice", "correct horse"), ErrFlowWrongState)
}

func TestLoginFlowBack(t *testing.T) {
	srv := newFlowServer(t, "482913")
	flow := NewLoginFlow(NewSDKClient(srv.URL))
	ctx := context.Background()

	require.ErrorIs(t, flow.Back(), ErrFlowWrongState)

	require.NoError(t, flow.SubmitCredentials(ctx, "alice", "correct horse"))
	require.NoError(t, flow.Back())
	require.Equal(t, FlowIdle, flow.State())
	require.Empty(t, flow.MaskedEmail())
}
