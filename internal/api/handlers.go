package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/docservice"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/permission"
)

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateProject handles POST /api/projects.
//
//	@Summary	Create a project
//	@Tags		projects
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateProjectRequest	true	"Project to create"
//	@Success	201		{object}	models.Project
//	@Security	BearerAuth
//	@Router		/projects [post]
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.svc.CreateProject(r.Context(), models.Project{ID: req.ID, Name: req.Name})
	if err != nil {
		writeServiceError(w, r, "create project", err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

// CreateDocument handles POST /api/documents.
//
//	@Summary	Create a document at version 1
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateDocumentRequest	true	"Document to create"
//	@Success	201		{object}	models.Document
//	@Security	BearerAuth
//	@Router		/documents [post]
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	doc, err := h.svc.CreateDocument(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "create document", err)
		return
	}
	writeData(w, http.StatusCreated, doc)
}

// AddVersion handles POST /api/documents/{id}/versions.
func (h *Handler) AddVersion(w http.ResponseWriter, r *http.Request) {
	var req AddVersionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := h.svc.AddVersion(r.Context(), chi.URLParam(r, "id"), req.PageCount, req.Body)
	if err != nil {
		writeServiceError(w, r, "add version", err)
		return
	}
	writeData(w, http.StatusCreated, v)
}

// GetDocument handles GET /api/documents/{id}.
//
//	@Summary	Get a document and its versions
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	docservice.DocumentDetail
//	@Failure	403	{object}	models.ErrorDetail
//	@Failure	404	{object}	models.ErrorDetail
//	@Security	BearerAuth
//	@Router		/documents/{id} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.GetDocument(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, "get document", err)
		return
	}
	writeData(w, http.StatusOK, doc)
}

// CreateComment handles POST /api/documents/{id}/comments.
// The fileId in the body, when present, must match the path.
//
//	@Summary	Comment on a document version
//	@Tags		comments
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Document ID"
//	@Param		body	body		models.CommentRequest	true	"Comment"
//	@Success	201		{object}	models.Comment
//	@Failure	400		{object}	models.ErrorDetail
//	@Failure	403		{object}	models.ErrorDetail
//	@Security	BearerAuth
//	@Router		/documents/{id}/comments [post]
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req models.CommentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if req.FileID == "" {
		req.FileID = id
	}
	if req.FileID != id {
		writeError(w, http.StatusBadRequest, codeBadRequest, "fileId does not match path", nil)
		return
	}
	c, err := h.svc.AddComment(r.Context(), UserFrom(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, "create comment", err)
		return
	}
	writeData(w, http.StatusCreated, c)
}

// ListComments handles GET /api/documents/{id}/comments[?version=N].
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	var version *int
	if raw := r.URL.Query().Get("version"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "version must be a non-negative integer", nil)
			return
		}
		version = &v
	}
	comments, err := h.svc.ListComments(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "id"), version)
	if err != nil {
		writeServiceError(w, r, "list comments", err)
		return
	}
	writeData(w, http.StatusOK, CommentListResponse{Comments: comments})
}

// CreateDecision handles POST /api/documents/{id}/decisions.
func (h *Handler) CreateDecision(w http.ResponseWriter, r *http.Request) {
	var req DecisionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := h.svc.Decide(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "id"), req.FileVersion, req.Outcome)
	if err != nil {
		writeServiceError(w, r, "create decision", err)
		return
	}
	writeData(w, http.StatusCreated, d)
}

// ListDecisions handles GET /api/documents/{id}/decisions.
func (h *Handler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListDecisions(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, "list decisions", err)
		return
	}
	writeData(w, http.StatusOK, DecisionListResponse{Decisions: list})
}

// GetPermission handles GET /api/documents/{id}/permission.
func (h *Handler) GetPermission(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	id := chi.URLParam(r, "id")
	level, err := h.svc.EffectiveLevel(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, r, "get permission", err)
		return
	}
	writeData(w, http.StatusOK, PermissionResponse{
		UserID:     user,
		DocumentID: id,
		Permission: level,
		CanView:    permission.Allows(level, permission.ActionView),
		CanComment: permission.Allows(level, permission.ActionComment),
		CanDecide:  permission.Allows(level, permission.ActionDecide),
	})
}

// Search handles GET /api/search.
//
//	@Summary	Search documents the caller may view
//	@Tags		search
//	@Produce	json
//	@Param		q		query		string	true	"Search query"
//	@Param		limit	query		int		false	"Max results"
//	@Success	200		{object}	SearchResponse
//	@Security	BearerAuth
//	@Router		/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), UserFrom(r.Context()), q, limit)
	if err != nil {
		writeServiceError(w, r, "search", err)
		return
	}
	writeData(w, http.StatusOK, SearchResponse{Results: results})
}

// ListOverrides handles GET /api/overrides[?user_id=&document_id=].
func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.svc.ListOverrides(r.Context(), q.Get("user_id"), q.Get("document_id"))
	if err != nil {
		writeServiceError(w, r, "list overrides", err)
		return
	}
	writeData(w, http.StatusOK, OverrideListResponse{Overrides: list})
}

// PutOverride handles PUT /api/overrides.
//
//	@Summary	Create or replace a permission override
//	@Tags		overrides
//	@Accept		json
//	@Produce	json
//	@Param		body	body		permission.Override	true	"Override"
//	@Success	200		{object}	permission.Override
//	@Failure	400		{object}	models.ErrorDetail
//	@Security	BearerAuth
//	@Router		/overrides [put]
func (h *Handler) PutOverride(w http.ResponseWriter, r *http.Request) {
	var o permission.Override
	if !decodeBody(w, r, &o) {
		return
	}
	// The server stamps overrides; a client-supplied createdAt is ignored.
	o.CreatedAt = time.Time{}
	saved, err := h.svc.SetOverride(r.Context(), o)
	if err != nil {
		writeServiceError(w, r, "put override", err)
		return
	}
	writeData(w, http.StatusOK, saved)
}

// DeleteOverride handles DELETE /api/overrides/{userID}/{documentID}.
func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	err := h.svc.RemoveOverride(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "documentID"))
	if err != nil {
		writeServiceError(w, r, "delete override", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
