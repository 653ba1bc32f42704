package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dexxter/dexxter/internal/auth/service"
	"github.com/dexxter/dexxter/pkg/authsdk"
	"github.com/dexxter/dexxter/pkg/httpx"
	"github.com/dexxter/dexxter/pkg/slogx"
)

// LoginHandler serves the admin and reseller login endpoints.
type LoginHandler struct {
	AuthService *service.AuthService
}

// HandleAdminLogin handles POST /v1/auth/admin/login.
//
// On a correct password it emails a one-time code and returns the code token
// for the verify step. The code itself never appears in the response.
func (h *LoginHandler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	challenge, err := h.AuthService.BeginAdminLogin(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			authsdk.ErrInvalidCredentials.WriteError(w)
		case errors.Is(err, service.ErrDeliveryFailure):
			authsdk.ErrDeliveryFailure.WriteError(w)
		default:
			log.Error("admin login failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.ChallengeResponse{
		RequiresCode: challenge.RequiresCode,
		CodeToken:    challenge.CodeToken,
		MaskedEmail:  challenge.MaskedEmail,
	})
}

// HandleVerifyCode handles POST /v1/auth/admin/verify-code.
func (h *LoginHandler) HandleVerifyCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.CodeToken == "" || !validCode(req.Code) {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	session, err := h.AuthService.VerifyAdminCode(ctx, req.CodeToken, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrExpiredCode):
			authsdk.ErrInvalidOrExpiredCode.WriteError(w)
		case errors.Is(err, service.ErrTooManyAttempts):
			authsdk.ErrTooManyAttempts.WriteError(w)
		default:
			log.Error("code verification failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse(session.AccessToken, session.TokenType, session.ExpiresIn, session.Role))
}

// HandleResellerLogin handles POST /v1/auth/reseller/login.
func (h *LoginHandler) HandleResellerLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	session, err := h.AuthService.LoginReseller(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			authsdk.ErrInvalidCredentials.WriteError(w)
		default:
			log.Error("reseller login failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse(session.AccessToken, session.TokenType, session.ExpiresIn, session.Role))
}

func sessionResponse(token, tokenType string, expiresIn time.Duration, role string) authsdk.SessionResponse {
	return authsdk.SessionResponse{
		Authenticated: true,
		AccessToken:   token,
		TokenType:     tokenType,
		ExpiresIn:     int(expiresIn.Seconds()),
		Role:          role,
	}
}

func validCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
