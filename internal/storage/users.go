// v0
// internal/storage/users.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nrgchamp/noc-dashboard/internal/auth"
)

const userQuery = "SELECT username, password_hash FROM users WHERE username = ? LIMIT 1"

// LookupCredential returns the stored credential for username, or nil
// when no such user exists.
func (s *SQLStore) LookupCredential(ctx context.Context, username string) (out *auth.Credential, err error) {
	defer func(start time.Time) { s.observe("users", start, err) }(time.Now())

	var c auth.Credential
	err = s.db.QueryRowContext(ctx, userQuery, username).Scan(&c.Username, &c.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return &c, nil
}
