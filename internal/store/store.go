package store

import (
	"context"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/permission"
)

// Repository is the persistence surface used by the document service.
// Consumers should depend on it rather than on *DB.
type Repository interface {
	CreateProject(ctx context.Context, p models.Project) (*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	CreateDocument(ctx context.Context, d models.Document, pageCount int, body string) (*models.Document, error)
	AddVersion(ctx context.Context, documentID string, pageCount int, body string) (*models.DocumentVersion, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	GetVersion(ctx context.Context, documentID string, version int) (*models.DocumentVersion, error)
	ListVersions(ctx context.Context, documentID string) ([]models.DocumentVersion, error)
	InsertComment(ctx context.Context, authorID string, req models.CommentRequest) (*models.Comment, error)
	ListComments(ctx context.Context, documentID string, version *int) ([]models.Comment, error)
	UpsertOverride(ctx context.Context, o permission.Override) (*permission.Override, error)
	DeleteOverride(ctx context.Context, userID, documentID string) error
	OverridesFor(ctx context.Context, userID, documentID string) ([]permission.Override, error)
	ListOverrides(ctx context.Context, f OverrideFilter) ([]permission.Override, error)
	InsertDecision(ctx context.Context, d models.Decision) (*models.Decision, error)
	ListDecisions(ctx context.Context, documentID string) ([]models.Decision, error)
	Search(ctx context.Context, query string, limit, offset int) ([]models.SearchResult, error)
	Close() error
}

// Verify *DB satisfies Repository at compile time.
var _ Repository = (*DB)(nil)
