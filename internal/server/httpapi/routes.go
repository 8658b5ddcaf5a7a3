package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the router. Everything except login sits behind the
// session middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(s.requestLogger)
	r.Use(s.limitRequestBody)

	r.Post("/api/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Post("/api/logout", s.handleLogout)

		r.Get("/api/notes", s.handleListNotes)
		r.Post("/api/notes", s.handleAddNote)
		r.Post("/api/notes/edit", s.handleEditNote)
		r.Post("/api/notes/delete", s.handleDeleteNote)
		r.Post("/api/notes/clear", s.handleClearNotes)

		r.Post("/api/upload", s.handleUpload)
		r.Get("/files/{username}/{storedName}", s.handleDownload)

		r.Get("/export/{format}", s.handleExport)
	})

	return r
}
