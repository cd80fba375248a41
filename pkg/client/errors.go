package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Structured error codes the client keys behavior off. The server's error
// envelope is {success:false, error:{code, message, details?}}.
const (
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

// Older API deployments signal these conditions through the message string
// only. The codes above are authoritative; the messages are a legacy
// fallback and nothing else should be matched on message text.
const (
	legacyTokenExpiredMessage     = "Token expired"
	legacyEmailNotVerifiedMessage = "Email not verified"
)

// APIError carries a non-2xx response's status and server error envelope,
// surfaced unmodified so callers can inspect all of it.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an APIError with
// the given HTTP status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}

// IsTokenExpired reports whether err is the 401 issued specifically for an
// expired access token, as opposed to any other unauthenticated condition
// (missing credential, bad password, revoked token).
func IsTokenExpired(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		return false
	}
	return apiErr.Code == CodeTokenExpired || apiErr.Message == legacyTokenExpiredMessage
}

// IsEmailNotVerified reports whether err is the login failure for an
// account whose email address has not been verified yet.
func IsEmailNotVerified(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == CodeEmailNotVerified || apiErr.Message == legacyEmailNotVerifiedMessage
}

// Message extracts the server-provided error message from err, falling
// back to err.Error() for transport-level failures.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
