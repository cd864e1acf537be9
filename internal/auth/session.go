// v0
// internal/auth/session.go
package auth

import (
	"context"
	"net/http"
	"strings"
)

type identityKey struct{}

// Authenticator validates the bearer token of an inbound request.
type Authenticator struct {
	tokens *Tokens
}

func NewAuthenticator(tokens *Tokens) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Authorize extracts and verifies the bearer token on r. It returns
// ErrMissingToken when no token is present and an error wrapping
// ErrInvalidToken when verification fails.
func (a *Authenticator) Authorize(r *http.Request) (Identity, error) {
	raw := bearerToken(r.Header.Get("Authorization"))
	if raw == "" {
		return Identity{}, ErrMissingToken
	}
	return a.tokens.Verify(raw)
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by the API's auth
// middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
