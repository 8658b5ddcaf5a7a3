// Package services implements the business logic of the QuickPad server on
// top of the repository layer.
package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/quickpad-app/quickpad/internal/common"
	"github.com/quickpad-app/quickpad/internal/logging"
	"github.com/quickpad-app/quickpad/internal/server/auth"
	"github.com/quickpad-app/quickpad/internal/server/config"
	"github.com/quickpad-app/quickpad/internal/server/repositories/credentials"
)

type UserService struct {
	repo            credentials.Repository
	logger          logging.Logger
	jwtSecret       []byte
	sessionValidity time.Duration
}

func NewUserService(repo credentials.Repository, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		repo:            repo,
		logger:          logger.With("module", "user_service"),
		jwtSecret:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionValidityDuration,
	}
}

// validUsername rejects names the flat-file layout cannot represent: the
// credential file's delimiters, and anything that would resolve to a path
// outside the per-user files (separators, ".", ".."). Usernames name files
// and directories on disk, so they must stay plain path components.
func validUsername(username string) bool {
	if username == "" || username == "." || username == ".." {
		return false
	}
	if strings.ContainsAny(username, ":\n/\\") {
		return false
	}
	return username == filepath.Base(username)
}

// Authenticate logs username in and returns a session token.
//
// There is no separate sign-up flow: an unknown username is registered on
// the spot with the supplied password and the attempt counts as a
// successful login. A known username must present the matching password
// (case-sensitive, no normalization) or the attempt fails with
// common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (string, error) {
	if !validUsername(username) || password == "" {
		return "", common.ErrorValidation
	}

	user, err := s.repo.Lookup(ctx, username)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		// new user: auto-registration on first login
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error(ctx, "hashing password", "error", err)
			return "", common.ErrorInternal
		}
		if err := s.repo.Register(ctx, username, string(hashed)); err != nil {
			s.logger.Error(ctx, "registering user", "error", err)
			return "", common.ErrorInternal
		}
		s.logger.Info(ctx, "registered new user", "username", username)
	case err != nil:
		s.logger.Error(ctx, "credential lookup", "error", err)
		return "", common.ErrorInternal
	default:
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			return "", common.ErrorUnauthorized
		}
	}

	token, err := auth.GenerateToken(username, s.jwtSecret, s.sessionValidity)
	if err != nil {
		s.logger.Error(ctx, "generating session token", "error", err)
		return "", common.ErrorInternal
	}

	return token, nil
}

// VerifyPassword re-checks username's password without issuing a token. It
// gates destructive operations such as clearing the note store. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *UserService) VerifyPassword(ctx context.Context, username, password string) error {
	user, err := s.repo.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "credential lookup", "error", err)
		return common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return common.ErrorUnauthorized
	}
	return nil
}
