package authsdk

// ErrorResponse represents an error payload from the authentication service.
// This is used internally for parsing HTTP error responses. Client code
// should use the APIError type from errors.go instead.
type ErrorResponse struct {
	// Error is the machine-readable error code (e.g., "invalid_credentials")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// LoginRequest is the body for both POST /v1/auth/admin/login and
// POST /v1/auth/reseller/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChallengeResponse is returned by POST /v1/auth/admin/login when the
// password checked out. The login is not complete until the emailed code is
// submitted with the code token.
type ChallengeResponse struct {
	// RequiresCode is always true; the second factor is never optional for admins
	RequiresCode bool `json:"requires_code"`

	// CodeToken is the opaque reference to this pending login. It must be
	// echoed back on the verify call and is useless without the emailed code.
	CodeToken string `json:"code_token"`

	// MaskedEmail shows where the code was sent, e.g. "a***@example.com"
	MaskedEmail string `json:"masked_email"`
}

// VerifyCodeRequest is the body for POST /v1/auth/admin/verify-code.
type VerifyCodeRequest struct {
	CodeToken string `json:"code_token"`
	Code      string `json:"code"`
}

// SessionResponse is returned once a login fully completes: immediately for
// resellers, after code verification for admins.
type SessionResponse struct {
	Authenticated bool `json:"authenticated"`

	// AccessToken is the JWT access token used to authenticate API requests
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`

	// Role of the authenticated principal ("admin" or "reseller")
	Role string `json:"role"`
}

// HealthResponse is returned by the GET /livez and GET /readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Version string        `json:"version,omitempty"`
	Uptime  string        `json:"uptime,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency status in the readiness probe.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
