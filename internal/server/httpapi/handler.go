package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quickpad-app/quickpad/internal/common"
	"github.com/quickpad-app/quickpad/internal/server/models"
	"github.com/quickpad-app/quickpad/internal/server/services"
)

// --- response helpers ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]any{
		"status":  "error",
		"message": message,
	})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":"error","message":"internal error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// serviceError maps the common error taxonomy onto HTTP statuses without
// leaking internals. Anything unexpected becomes a generic 500.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		s.respondWithError(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, common.ErrorNotFound):
		s.respondWithError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized):
		s.respondWithError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, common.ErrorInvalidFormat):
		s.respondWithError(w, http.StatusBadRequest, "invalid format")
	default:
		s.respondWithError(w, http.StatusInternalServerError, "internal error")
	}
}

// --- auth ---

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := s.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.respondWithError(w, http.StatusUnauthorized, "invalid password")
			return
		}
		s.serviceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.sessionValidity),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.respondWithJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"token":  token,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	s.respondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// --- notes ---

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameFromContext(r.Context())
	if !ok {
		s.respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	list, err := s.notes.List(r.Context(), username)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameFromContext(r.Context())
	if !ok {
		s.respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Note       string             `json:"note"`
		Attachment *models.Attachment `json:"attachment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	note, err := s.notes.Add(r.Context(), username, req.Note, req.Attachment)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			s.respondWithError(w, http.StatusBadRequest, "note cannot be empty")
			return
		}
		s.serviceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"note":   note,
	})
}

func (s *Server) handleEditNote(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameFromContext(r.Context())
	if !ok {
		s.respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Timestamp string `json:"timestamp" validate:"required"`
		NewText   string `json:"new_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "timestamp is required")
		return
	}

	if err := s.notes.Edit(r.Context(), username, req.Timestamp, req.NewText); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.respondWithError(w, http.StatusNotFound, "note not found")
			return
		}
		s.serviceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameFromContext(r.Context())
	if !ok {
		s.respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Timestamp string `json:"timestamp" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "timestamp is required")
		return
	}

	if err := s.notes.Delete(r.Context(), username, req.Timestamp); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.respondWithError(w, http.StatusNotFound, "note not found")
			return
		}
		s.serviceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleClearNotes(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameFromContext(r.Context())
	if !ok {
		s.respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Password string `json:"password" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "password is required")
		return
	}

	// destructive operation: re-verify the password before proceeding
	if err := s.users.VerifyPassword(r.Context(), username, req.Password); err != nil {
		s.respondWithError(w, http.StatusForbidden, "invalid password")
		return
	}

	if err := s.notes.Clear(r.Context(), username); err != nil {
		s.serviceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// --- files ---

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameFromContext(r.Context())
	if !ok {
		s.respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "no file selected")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.respondWithError(w, http.StatusBadRequest, "no file selected")
		return
	}

	att, err := s.attachments.Save(r.Context(), username, header.Filename, file)
	if err != nil {
		s.logger.Error(r.Context(), "saving upload", "username", username, "error", err)
		s.respondWithError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"original_name": att.OriginalName,
		"stored_name":   att.StoredName,
		"size":          att.Size,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameFromContext(r.Context())
	if !ok {
		s.respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	owner := chi.URLParam(r, "username")
	storedName := chi.URLParam(r, "storedName")

	// users can only download their own files
	if owner != username {
		s.respondWithError(w, http.StatusForbidden, "forbidden")
		return
	}

	rc, err := s.attachments.Open(r.Context(), owner, storedName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.respondWithError(w, http.StatusNotFound, "not found")
			return
		}
		s.serviceError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", storedName))
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Error(r.Context(), "streaming download", "username", username, "error", err)
	}
}

// --- export ---

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameFromContext(r.Context())
	if !ok {
		s.respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	format := chi.URLParam(r, "format")

	list, err := s.notes.List(r.Context(), username)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	out, err := s.export.Export(r.Context(), list, format)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidFormat) {
			s.respondWithError(w, http.StatusBadRequest, "invalid file type")
			return
		}
		s.serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", services.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s_notes.%s", username, format)))
	w.Write(out)
}
