package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeSessionNotFound    = "session_not_found"
	ErrCodeInternal           = "internal"
)

// ErrHubClosed is returned when submitting to a hub that stopped running.
var ErrHubClosed = errors.New("hub closed")

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

var (
	errMissingCredentials = coreError(ErrCodeBadRequest, "Username and password required")
	errInvalidCredentials = coreError(ErrCodeInvalidCredentials, "Invalid credentials")
	errSessionNotFound    = coreError(ErrCodeSessionNotFound, "Session not found")
	errCommunityName      = coreError(ErrCodeBadRequest, "Community name must be 2-20 characters")
	errEmptyDisplayName   = coreError(ErrCodeBadRequest, "Display name cannot be empty")
	errNotAuthenticated   = coreError(ErrCodeUnauthorized, "Not authenticated")
	errInternal           = coreError(ErrCodeInternal, "Internal server error")
)
