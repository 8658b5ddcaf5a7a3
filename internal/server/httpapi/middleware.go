package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/quickpad-app/quickpad/internal/common"
	"github.com/quickpad-app/quickpad/internal/server/auth"
)

// contextKey is a private type to avoid key collisions in the request
// context.
type contextKey string

const usernameContextKey = contextKey("username")

// usernameFromContext returns the identity the session middleware stored
// for this request. Handlers must use this and nothing else: identity is
// always explicit request-scoped state, never ambient.
func usernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameContextKey).(string)
	return username, ok && username != ""
}

// sessionToken extracts the token from the session cookie or, failing
// that, from a Bearer authorization header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(common.SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}

// sessionMiddleware authenticates the request and stores the username in
// the context.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			s.respondWithError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		username, err := auth.GetUsernameFromToken(token, s.jwtSecret)
		if err != nil {
			s.respondWithError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		ctx := context.WithValue(r.Context(), usernameContextKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// limitRequestBody caps every request body at the configured upload limit,
// so oversized JSON payloads are rejected the same way oversized uploads
// are.
func (s *Server) limitRequestBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request through the structured logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String(),
		)
	})
}
