// Package attachments stores uploaded files in one flat directory per user,
// keyed by randomly generated names that are never derived from the
// user-supplied filename.
package attachments

import (
	"context"
	"io"

	"github.com/quickpad-app/quickpad/internal/server/models"
)

// Repository is the attachment store abstraction. It performs no per-caller
// authorization; the web layer must verify the requesting identity owns
// username before calling Open.
type Repository interface {
	// Save writes content under a fresh random name (original extension
	// preserved) and returns the resulting attachment reference.
	Save(ctx context.Context, username, originalName string, content io.Reader) (*models.Attachment, error)

	// Open returns the stored file for download, or common.ErrorNotFound.
	Open(ctx context.Context, username, storedName string) (io.ReadCloser, error)

	// Delete removes the stored file. A missing file is not an error.
	Delete(ctx context.Context, username, storedName string) error

	// Clear removes the user's whole attachment directory.
	Clear(ctx context.Context, username string) error
}
