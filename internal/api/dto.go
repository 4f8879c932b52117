package api

import (
	"github.com/starford/folio/internal/docservice"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/permission"
)

// CreateProjectRequest is the request body for creating a project.
type CreateProjectRequest struct {
	ID   string `json:"id,omitempty" example:"p-legal"`
	Name string `json:"name" example:"Legal"`
}

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest = docservice.NewDocument

// AddVersionRequest is the request body for uploading a new version.
type AddVersionRequest struct {
	PageCount int    `json:"pageCount" example:"12"`
	Body      string `json:"body" example:"Full text of the version"`
}

// DecisionRequest is the request body for approving or rejecting a version.
type DecisionRequest struct {
	FileVersion int    `json:"fileVersion" example:"3"`
	Outcome     string `json:"outcome" example:"APPROVED"`
}

// PermissionResponse reports a user's effective level on a document.
type PermissionResponse struct {
	UserID     string           `json:"userId" example:"u1"`
	DocumentID string           `json:"documentId" example:"doc-42"`
	Permission permission.Level `json:"permission" example:"COMMENT"`
	CanView    bool             `json:"canView"`
	CanComment bool             `json:"canComment"`
	CanDecide  bool             `json:"canDecide"`
}

// CommentListResponse wraps a document's comments.
type CommentListResponse struct {
	Comments []models.Comment `json:"comments"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []models.SearchResult `json:"results"`
}

// OverrideListResponse wraps permission overrides.
type OverrideListResponse struct {
	Overrides []permission.Override `json:"overrides"`
}

// DecisionListResponse wraps decisions.
type DecisionListResponse struct {
	Decisions []models.Decision `json:"decisions"`
}
