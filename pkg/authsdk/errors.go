package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dexxter/dexxter/pkg/httpx"
)

// Error codes returned by the authentication endpoints.
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeInvalidCredentials   = "invalid_credentials"
	ErrorCodeDeliveryFailure      = "delivery_failure"
	ErrorCodeInvalidOrExpiredCode = "invalid_or_expired_code"
	ErrorCodeTooManyAttempts      = "too_many_attempts"
	ErrorCodeServerError          = "server_error"
)

// APIError represents an error response from the authentication service.
// It implements the error interface and can be used both by the server
// (to write HTTP responses) and by the SDK client (to represent errors).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g., "invalid_credentials")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	// ErrInvalidRequest is returned when the request is missing a required
	// parameter or is otherwise malformed.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidCredentials is returned for both unknown usernames and wrong
	// passwords. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid credentials",
	}

	// ErrDeliveryFailure is returned when the verification code could not be
	// sent to the admin's email address. The login did not advance.
	ErrDeliveryFailure = &APIError{
		StatusCode:  http.StatusBadGateway,
		Code:        ErrorCodeDeliveryFailure,
		Description: "failed to send the verification code, try again",
	}

	// ErrInvalidOrExpiredCode is returned when the submitted code is wrong,
	// expired, already used, or superseded by a newer code.
	ErrInvalidOrExpiredCode = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidOrExpiredCode,
		Description: "the verification code is invalid or has expired",
	}

	// ErrTooManyAttempts is returned when a pending login is destroyed after
	// repeated wrong code submissions.
	ErrTooManyAttempts = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeTooManyAttempts,
		Description: "too many failed attempts, restart the login",
	}

	// ErrServerError is returned for unexpected internal failures.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)
