package authsdk

import (
	"context"
	"errors"
	"strings"
)

// FlowState is the position of a LoginFlow in the two-step admin login.
type FlowState int

const (
	// FlowIdle is the initial state: waiting for username and password.
	FlowIdle FlowState = iota

	// FlowCredentialsSubmitted means the password request is in flight.
	FlowCredentialsSubmitted

	// FlowAwaitingCode means the password checked out and the flow is
	// waiting for the emailed code.
	FlowAwaitingCode

	// FlowCompleted means the login fully succeeded and Session() is set.
	FlowCompleted
)

func (s FlowState) String() string {
	switch s {
	case FlowIdle:
		return "idle"
	case FlowCredentialsSubmitted:
		return "credentials_submitted"
	case FlowAwaitingCode:
		return "awaiting_code"
	case FlowCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

var (
	ErrFlowWrongState = errors.New("authsdk: operation not valid in current flow state")
	ErrEmptyField     = errors.New("authsdk: username and password must be non-empty")
	ErrMalformedCode  = errors.New("authsdk: code must be exactly 6 digits")
)

// LoginFlow drives the two-step admin login from the client side. It holds
// only transient presentation state; the server decides which code is valid.
// A failure returns the flow to the state it was in before the submission so
// the caller can retry without starting over.
type LoginFlow struct {
	client *SDKClient

	state       FlowState
	codeToken   string
	maskedEmail string
	session     *SessionResponse
}

// NewLoginFlow creates a flow in the idle state.
func NewLoginFlow(client *SDKClient) *LoginFlow {
	return &LoginFlow{client: client, state: FlowIdle}
}

// State returns the current flow state.
func (f *LoginFlow) State() FlowState { return f.state }

// MaskedEmail returns where the code was sent, once the flow is awaiting it.
func (f *LoginFlow) MaskedEmail() string { return f.maskedEmail }

// Session returns the completed session, or nil before completion.
func (f *LoginFlow) Session() *SessionResponse { return f.session }

// SubmitCredentials performs the password step. On success the flow advances
// to FlowAwaitingCode; on failure it returns to FlowIdle with the error.
func (f *LoginFlow) SubmitCredentials(ctx context.Context, username, password string) error {
	if f.state != FlowIdle {
		return ErrFlowWrongState
	}
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrEmptyField
	}

	f.state = FlowCredentialsSubmitted

	challenge, err := f.client.AdminLogin(ctx, username, password)
	if err != nil {
		f.state = FlowIdle
		return err
	}

	f.codeToken = challenge.CodeToken
	f.maskedEmail = challenge.MaskedEmail
	f.state = FlowAwaitingCode
	return nil
}

// SubmitCode performs the code step. On failure the flow stays in
// FlowAwaitingCode so the user can retype the code, except when the server
// reports the pending login dead (expired or locked), which drops the flow
// back to FlowIdle.
func (f *LoginFlow) SubmitCode(ctx context.Context, code string) error {
	if f.state != FlowAwaitingCode {
		return ErrFlowWrongState
	}
	if !validCodeFormat(code) {
		return ErrMalformedCode
	}

	session, err := f.client.VerifyAdminCode(ctx, f.codeToken, code)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == ErrorCodeTooManyAttempts {
			f.reset()
		}
		return err
	}

	f.session = session
	f.codeToken = ""
	f.state = FlowCompleted
	return nil
}

// Back abandons a pending code step and returns to idle. The server-side
// code keeps its own expiry regardless.
func (f *LoginFlow) Back() error {
	if f.state != FlowAwaitingCode {
		return ErrFlowWrongState
	}
	f.reset()
	return nil
}

func (f *LoginFlow) reset() {
	f.state = FlowIdle
	f.codeToken = ""
	f.maskedEmail = ""
}

func validCodeFormat(code string) bool {
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
