package credentials

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/quickpad-app/quickpad/internal/common"
	"github.com/quickpad-app/quickpad/internal/server/models"
)

// FileRepository stores credentials in a single text file. A missing or
// empty file behaves as an empty mapping. If the file ever contains the
// same username twice (possible under concurrent first-time registration),
// the first occurrence in file order is authoritative.
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Lookup(ctx context.Context, username string) (*models.User, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("opening credential file: %w", err)
	}
	defer f.Close()

	creds := make(map[string]string)

	scanner := bufio.NewScanner(f)
	// lift the default 64KiB token limit so an oversized line cannot
	// poison lookups for every account below it
	scanner.Buffer(make([]byte, 0, 4<<10), 1<<20)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		user, hash, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		// first occurrence wins
		if _, exists := creds[user]; !exists {
			creds[user] = hash
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning credential file: %w", err)
	}

	hash, ok := creds[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.User{Username: username, PasswordHash: hash}, nil
}

func (r *FileRepository) Register(ctx context.Context, username string, hash string) error {
	if username == "" || username == "." || username == ".." ||
		strings.ContainsAny(username, ":\n/\\") {
		return common.ErrorValidation
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o660)
	if err != nil {
		return fmt.Errorf("opening credential file: %w", err)
	}

	if _, err := fmt.Fprintf(f, "%s:%s\n", username, hash); err != nil {
		f.Close()
		return fmt.Errorf("appending credential: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing credential file: %w", err)
	}
	return nil
}
