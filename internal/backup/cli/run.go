package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/quickpad-app/quickpad/internal/backup"
	"github.com/quickpad-app/quickpad/internal/logging"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one backup cycle: archive, upload, cleanup",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configFile)
			if err != nil {
				return err
			}

			logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

			archiver := backup.NewArchiver(cfg, logger)
			uploader := backup.NewS3Uploader(cfg, logger)
			job := backup.NewJob(archiver, uploader, logger)

			return job.Run(cmd.Context())
		},
	}
}
