package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/docservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// eventsHandler, if non-nil, is mounted at GET /events inside the auth group.
//
// Project, document, version and override administration act with the
// token's authority. Routes that read or annotate a document act for the
// user named in the X-User-ID header and are permission-checked.
func NewRouter(svc *docservice.Service, authEnabled bool, token string, eventsHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Administration.
	r.Post("/projects", h.CreateProject)
	r.Post("/documents", h.CreateDocument)
	r.Post("/documents/{id}/versions", h.AddVersion)
	r.Get("/overrides", h.ListOverrides)
	r.Put("/overrides", h.PutOverride)
	r.Delete("/overrides/{userID}/{documentID}", h.DeleteOverride)

	// Per-user routes.
	r.Group(func(r chi.Router) {
		r.Use(RequireUser)

		r.Get("/documents/{id}", h.GetDocument)
		r.Get("/documents/{id}/permission", h.GetPermission)
		r.Get("/documents/{id}/comments", h.ListComments)
		r.Post("/documents/{id}/comments", h.CreateComment)
		r.Get("/documents/{id}/decisions", h.ListDecisions)
		r.Post("/documents/{id}/decisions", h.CreateDecision)
		r.Get("/search", h.Search)
	})

	if eventsHandler != nil {
		r.Get("/events", eventsHandler.ServeHTTP)
	}

	return r
}
