// Package notes persists each user's notes as one line-delimited JSON file.
package notes

import (
	"context"

	"github.com/quickpad-app/quickpad/internal/server/models"
)

// Repository is the note store abstraction. Edit and delete are expressed
// as List followed by RewriteAll: every mutation that is not a pure append
// reads the whole file and rewrites it from scratch. That is O(n) per
// mutation and acceptable only while note counts per user stay small.
type Repository interface {
	// List returns all parseable notes for the user, sorted ascending by
	// timestamp. A missing store file yields an empty list, not an error.
	List(ctx context.Context, username string) ([]models.Note, error)

	// Append adds one note to the end of the user's store file, creating
	// the file when absent.
	Append(ctx context.Context, username string, note models.Note) error

	// RewriteAll replaces the user's store file with the given notes.
	RewriteAll(ctx context.Context, username string, notes []models.Note) error

	// Clear removes the user's store file. A missing file is not an error.
	Clear(ctx context.Context, username string) error
}
