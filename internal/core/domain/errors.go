package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrMissingToken       = errors.New("missing bearer token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInsufficientRole   = errors.New("insufficient role")
	ErrInternalAuth       = errors.New("internal auth failure")

	ErrPrincipalNotFound = errors.New("principal not found")
	ErrInvalidRole       = errors.New("invalid role")
	ErrTooManyAttempts   = errors.New("too many failed sign-in attempts")
	ErrMissingField      = errors.New("username and password are required")
	ErrPasswordTooLong   = errors.New("password too long")
)

// MaxPasswordBytes is the longest password the hasher accepts, in bytes.
const MaxPasswordBytes = 72

// IsDenial reports whether err is an authentication or authorization denial,
// as opposed to a fault in a dependency.
func IsDenial(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrMissingToken),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrExpiredToken),
		errors.Is(err, ErrInsufficientRole):
		return true
	}
	return false
}

// DenialReason returns a short label for a denial, used for logs and metrics.
func DenialReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrMissingToken):
		return "missing_token"
	case errors.Is(err, ErrExpiredToken):
		return "expired_token"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrInsufficientRole):
		return "insufficient_role"
	case errors.Is(err, ErrTooManyAttempts):
		return "too_many_attempts"
	default:
		return "internal"
	}
}
