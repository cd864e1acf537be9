// v0
// internal/auth/verifier.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credential is a stored user record. PasswordHash is a bcrypt hash.
type Credential struct {
	Username     string
	PasswordHash string
}

// CredentialStore looks up a user by exact username. It returns nil, nil
// when the user does not exist.
type CredentialStore interface {
	LookupCredential(ctx context.Context, username string) (*Credential, error)
}

// unknownUserHash is compared against when the username does not exist
// so both outcomes cost one bcrypt comparison.
var unknownUserHash = mustGenerateHash("noc-dashboard unknown user")

func mustGenerateHash(secret string) []byte {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return b
}

// Verifier checks login credentials and issues session tokens.
type Verifier struct {
	store   CredentialStore
	tokens  *Tokens
	compare func(hash, secret []byte) error
}

func NewVerifier(store CredentialStore, tokens *Tokens) *Verifier {
	return &Verifier{store: store, tokens: tokens, compare: bcrypt.CompareHashAndPassword}
}

// Authenticate returns a signed token for a matching username and
// secret. Unknown users and wrong secrets both yield
// ErrInvalidCredentials; store failures are returned wrapped.
func (v *Verifier) Authenticate(ctx context.Context, username, secret string) (string, error) {
	if username == "" || secret == "" {
		return "", ErrInvalidCredentials
	}
	cred, err := v.store.LookupCredential(ctx, username)
	if err != nil {
		return "", fmt.Errorf("lookup credential: %w", err)
	}
	if cred == nil {
		_ = v.compare(unknownUserHash, []byte(secret))
		return "", ErrInvalidCredentials
	}
	if err := v.compare([]byte(cred.PasswordHash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrInvalidCredentials
		}
		// A malformed stored hash can never match.
		return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return v.tokens.Issue(cred.Username)
}

// HashPassword produces the bcrypt hash stored in users.password_hash.
func HashPassword(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("auth: password must not be empty")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
