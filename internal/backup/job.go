package backup

import (
	"context"
	"fmt"
	"os"

	"github.com/quickpad-app/quickpad/internal/logging"
)

// Job runs one backup cycle: archive, upload, cleanup. The local archive
// is removed on every exit path, including a failed upload.
type Job struct {
	archiver *Archiver
	uploader Uploader
	logger   logging.Logger
}

func NewJob(archiver *Archiver, uploader Uploader, logger logging.Logger) *Job {
	return &Job{
		archiver: archiver,
		uploader: uploader,
		logger:   logger.With("module", "backup_job"),
	}
}

func (j *Job) Run(ctx context.Context) error {
	j.logger.Info(ctx, "Starting backup...")

	path, err := j.archiver.Create(ctx)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}

	defer func() {
		if err := os.Remove(path); err != nil {
			j.logger.Warn(ctx, "removing local archive", "path", path, "error", err)
		}
	}()

	if err := j.uploader.Upload(ctx, path); err != nil {
		return fmt.Errorf("uploading archive: %w", err)
	}

	j.logger.Info(ctx, "Backup finished")
	return nil
}
