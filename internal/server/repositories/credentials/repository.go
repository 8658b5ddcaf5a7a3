// Package credentials persists the username → password-hash mapping in a
// flat colon-delimited file, one "username:hash" line per account.
package credentials

import (
	"context"

	"github.com/quickpad-app/quickpad/internal/server/models"
)

// Repository is the credential store abstraction.
//
// Register performs no uniqueness check by itself; the authentication flow
// is expected to call Lookup first and only register absent usernames.
type Repository interface {
	// Lookup returns the stored account for username, or common.ErrorNotFound.
	Lookup(ctx context.Context, username string) (*models.User, error)

	// Register appends a new credential line.
	Register(ctx context.Context, username string, hash string) error
}
