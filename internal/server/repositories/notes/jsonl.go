package notes

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quickpad-app/quickpad/internal/common"
	"github.com/quickpad-app/quickpad/internal/server/models"
)

// maxLineBytes caps a single store line. It matches the server's upload
// cap so any note the HTTP layer accepts can be read back; bufio.Scanner's
// default 64KiB token limit would make List fail on a long-but-valid note.
const maxLineBytes = 16 << 20

// FileRepository keeps one "<username>.jsonl" file per user under dir.
// Lines that fail to parse are dropped silently on read: the store heals
// itself at the cost of losing the corrupted record.
type FileRepository struct {
	dir string
}

func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

func (r *FileRepository) userFile(username string) string {
	return filepath.Join(r.dir, username+".jsonl")
}

// safeUsername rejects names that would let userFile resolve outside dir.
// The service layer validates usernames at login; this is the repository's
// own line of defense.
func safeUsername(username string) bool {
	if username == "" || username == "." || username == ".." {
		return false
	}
	if strings.ContainsAny(username, `/\`) {
		return false
	}
	return username == filepath.Base(username)
}

func (r *FileRepository) List(ctx context.Context, username string) ([]models.Note, error) {
	if !safeUsername(username) {
		return nil, common.ErrorValidation
	}

	f, err := os.Open(r.userFile(username))
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Note{}, nil
		}
		return nil, fmt.Errorf("opening note store: %w", err)
	}
	defer f.Close()

	notes := []models.Note{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var n models.Note
		if err := json.Unmarshal(line, &n); err != nil {
			// skip corrupted lines
			continue
		}
		notes = append(notes, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning note store: %w", err)
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Timestamp < notes[j].Timestamp
	})

	return notes, nil
}

func (r *FileRepository) Append(ctx context.Context, username string, note models.Note) error {
	if !safeUsername(username) {
		return common.ErrorValidation
	}

	if err := os.MkdirAll(r.dir, 0o770); err != nil {
		return fmt.Errorf("creating notes dir: %w", err)
	}

	line, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("encoding note: %w", err)
	}

	f, err := os.OpenFile(r.userFile(username), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o660)
	if err != nil {
		return fmt.Errorf("opening note store: %w", err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("appending note: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing note store: %w", err)
	}
	return nil
}

// RewriteAll writes to a temp file in the same directory and renames it over
// the store, so a crash mid-rewrite never leaves a truncated file behind.
func (r *FileRepository) RewriteAll(ctx context.Context, username string, notes []models.Note) error {
	if !safeUsername(username) {
		return common.ErrorValidation
	}

	if err := os.MkdirAll(r.dir, 0o770); err != nil {
		return fmt.Errorf("creating notes dir: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, ".rewrite-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, n := range notes {
		line, err := json.Marshal(n)
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("encoding note: %w", err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing note: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.userFile(username)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (r *FileRepository) Clear(ctx context.Context, username string) error {
	if !safeUsername(username) {
		return common.ErrorValidation
	}

	err := os.Remove(r.userFile(username))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing note store: %w", err)
	}
	return nil
}
