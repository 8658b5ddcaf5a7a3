// Package server initializes and runs the QuickPad application server.
// It prepares the data directories, wires the file-backed repositories and
// services together, handles graceful shutdown, and starts the HTTP server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/quickpad-app/quickpad/internal/filex"
	"github.com/quickpad-app/quickpad/internal/logging"
	"github.com/quickpad-app/quickpad/internal/server/config"
	"github.com/quickpad-app/quickpad/internal/server/httpapi"
	"github.com/quickpad-app/quickpad/internal/server/repositories/attachments"
	"github.com/quickpad-app/quickpad/internal/server/repositories/credentials"
	"github.com/quickpad-app/quickpad/internal/server/repositories/notes"
	"github.com/quickpad-app/quickpad/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	if _, err := filex.EnsureDir(c.NotesDir()); err != nil {
		return nil, fmt.Errorf("preparing notes dir: %w", err)
	}
	if _, err := filex.EnsureDir(c.UploadsDir()); err != nil {
		return nil, fmt.Errorf("preparing uploads dir: %w", err)
	}

	credRepo := credentials.NewFileRepository(c.UsersFile())
	noteRepo := notes.NewFileRepository(c.NotesDir())
	attachmentRepo := attachments.NewDiskRepository(c.UploadsDir())

	userService := services.NewUserService(credRepo, c, logger)
	noteService := services.NewNoteService(noteRepo, attachmentRepo, logger)
	exportService := services.NewExportService(logger)

	server := httpapi.NewServer(c.EndpointAddr, logger, userService, noteService, exportService,
		attachmentRepo, c.SecretKey, c.SessionValidityDuration, c.MaxUploadBytes)

	return &App{config: c, logger: logger, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

}
