package backup

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/quickpad-app/quickpad/internal/logging"
)

const archiveTimestampLayout = "2006-01-02_15-04-05"

// Archiver builds timestamped ZIP snapshots of the data directory. Files
// are first copied into a staging directory so the archive sees a single
// point-in-time tree; the staging directory is always removed, success or
// failure.
type Archiver struct {
	dataDir string
	destDir string
	sources []string
	logger  logging.Logger

	now func() time.Time
}

func NewArchiver(cfg *Config, logger logging.Logger) *Archiver {
	return &Archiver{
		dataDir: cfg.DataDir,
		destDir: cfg.ArchiveDir,
		sources: cfg.sources(),
		logger:  logger.With("module", "archiver"),
		now:     time.Now,
	}
}

// Create assembles the archive and returns its path. Missing sources are
// logged and skipped; the job still produces an archive from whatever is
// present.
func (a *Archiver) Create(ctx context.Context) (string, error) {
	staging, err := os.MkdirTemp(a.destDir, "quickpad-staging-")
	if err != nil {
		return "", fmt.Errorf("creating staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	for _, name := range a.sources {
		src := filepath.Join(a.dataDir, name)
		info, err := os.Stat(src)
		if os.IsNotExist(err) {
			a.logger.Warn(ctx, "backup source not found, skipping", "source", name)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("inspecting source %s: %w", name, err)
		}

		dst := filepath.Join(staging, name)
		if info.IsDir() {
			err = copyTree(src, dst)
		} else {
			err = copyFile(src, dst)
		}
		if err != nil {
			return "", fmt.Errorf("staging source %s: %w", name, err)
		}
		a.logger.Info(ctx, "staged backup source", "source", name)
	}

	archivePath := filepath.Join(a.destDir,
		fmt.Sprintf("quickpad_backup_%s.zip", a.now().Format(archiveTimestampLayout)))

	if err := zipTree(staging, archivePath); err != nil {
		os.Remove(archivePath)
		return "", fmt.Errorf("writing archive: %w", err)
	}

	a.logger.Info(ctx, "archive created", "path", archivePath)
	return archivePath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

// zipTree writes every file under root into a ZIP archive at dest, with
// entry names relative to root.
func zipTree(root, dest string) error {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(w, in)
		return err
	})
	if err != nil {
		zw.Close()
		return err
	}

	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}
