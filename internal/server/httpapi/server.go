// Package httpapi exposes the QuickPad services over HTTP: login, note
// CRUD, uploads/downloads, and exports.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/quickpad-app/quickpad/internal/logging"
	"github.com/quickpad-app/quickpad/internal/server/repositories/attachments"
	"github.com/quickpad-app/quickpad/internal/server/services"
)

type Server struct {
	address         string
	logger          logging.Logger
	users           *services.UserService
	notes           *services.NoteService
	export          *services.ExportService
	attachments     attachments.Repository
	validate        *validator.Validate
	jwtSecret       []byte
	sessionValidity time.Duration
	maxUploadBytes  int64
}

func NewServer(
	address string,
	logger logging.Logger,
	users *services.UserService,
	notes *services.NoteService,
	export *services.ExportService,
	attachmentRepo attachments.Repository,
	secretKey string,
	sessionValidity time.Duration,
	maxUploadBytes int64,
) *Server {
	return &Server{
		address:         address,
		logger:          logger.With("module", "http_server"),
		users:           users,
		notes:           notes,
		export:          export,
		attachments:     attachmentRepo,
		validate:        validator.New(),
		jwtSecret:       []byte(secretKey),
		sessionValidity: sessionValidity,
		maxUploadBytes:  maxUploadBytes,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
