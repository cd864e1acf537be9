// v0
// internal/auth/errors.go
package auth

import "errors"

var (
	// ErrMissingToken means the request carried no bearer token.
	ErrMissingToken = errors.New("auth: missing token")
	// ErrInvalidToken covers every token that fails verification. Clients
	// see one uniform response; the wrapped cause is for logs only.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrInvalidCredentials means no user matched the username and secret.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("token signature mismatch")
	ErrTokenMalformed = errors.New("token malformed")
)

// Reason maps an authorization failure to a short label for logs and
// metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "missing"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenSignature):
		return "signature"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, ErrInvalidToken):
		return "invalid"
	default:
		return "unknown"
	}
}
