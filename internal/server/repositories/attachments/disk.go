package attachments

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/quickpad-app/quickpad/internal/common"
	"github.com/quickpad-app/quickpad/internal/filex"
	"github.com/quickpad-app/quickpad/internal/server/models"
)

// DiskRepository keeps one directory per user under dir.
type DiskRepository struct {
	dir string
}

func NewDiskRepository(dir string) *DiskRepository {
	return &DiskRepository{dir: dir}
}

func (r *DiskRepository) userDir(username string) string {
	return filepath.Join(r.dir, username)
}

// storedName builds a fresh on-disk key: a dashless UUID plus the original
// extension. Collisions within a user directory are treated as negligible.
func storedName(originalName string) string {
	ext := filepath.Ext(filepath.Base(originalName))
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}

// safeName rejects anything that could resolve outside the user directory.
// It guards stored names and usernames alike: both become path components.
func safeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return name == filepath.Base(name)
}

func (r *DiskRepository) Save(ctx context.Context, username, originalName string, content io.Reader) (*models.Attachment, error) {
	if !safeName(username) {
		return nil, common.ErrorValidation
	}

	dir, err := filex.EnsureSubDir(r.dir, username)
	if err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}

	name := storedName(originalName)

	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o660)
	if err != nil {
		return nil, fmt.Errorf("creating attachment file: %w", err)
	}

	size, err := io.Copy(f, content)
	if err != nil {
		f.Close()
		os.Remove(filepath.Join(dir, name))
		return nil, fmt.Errorf("writing attachment: %w", err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing attachment: %w", err)
	}

	return &models.Attachment{
		OriginalName: filepath.Base(originalName),
		StoredName:   name,
		Size:         size,
	}, nil
}

func (r *DiskRepository) Open(ctx context.Context, username, storedName string) (io.ReadCloser, error) {
	if !safeName(username) || !safeName(storedName) {
		return nil, common.ErrorNotFound
	}

	f, err := os.Open(filepath.Join(r.userDir(username), storedName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("opening attachment: %w", err)
	}
	return f, nil
}

func (r *DiskRepository) Delete(ctx context.Context, username, storedName string) error {
	if !safeName(username) || !safeName(storedName) {
		return nil
	}

	err := os.Remove(filepath.Join(r.userDir(username), storedName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing attachment: %w", err)
	}
	return nil
}

func (r *DiskRepository) Clear(ctx context.Context, username string) error {
	if !safeName(username) {
		return common.ErrorValidation
	}

	if err := os.RemoveAll(r.userDir(username)); err != nil {
		return fmt.Errorf("removing upload dir: %w", err)
	}
	return nil
}
