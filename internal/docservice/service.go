// Package docservice coordinates the store with the annotation and permission rules.
package docservice

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/annotation"
	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/permission"
	"github.com/starford/folio/internal/search"
	"github.com/starford/folio/internal/store"
)

// Notifier receives change events. The SSE broker implements it.
type Notifier interface {
	Publish(kind, documentID string, data any)
}

// Event kinds passed to Notifier.
const (
	EventCommentCreated   = "comment.created"
	EventDecisionRecorded = "decision.recorded"
	EventVersionAdded     = "version.added"
	EventOverrideUpdated  = "override.updated"
	EventOverrideRemoved  = "override.removed"
)

// Service coordinates store operations with authorization checks.
type Service struct {
	repo         store.Repository
	defaultLevel permission.Level
	notifier     Notifier
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the event sink.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// NewService creates a document service. defaultLevel applies to users with
// no override on a document; it is a deployment decision.
func NewService(repo store.Repository, defaultLevel permission.Level, opts ...Option) (*Service, error) {
	if err := defaultLevel.Validate(); err != nil {
		return nil, apperr.Validation(validation.Errors{"default_level": err})
	}
	s := &Service{repo: repo, defaultLevel: defaultLevel}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultLevel returns the level used when no override exists.
func (s *Service) DefaultLevel() permission.Level {
	return s.defaultLevel
}

// EffectiveLevel resolves the level of userID on documentID.
func (s *Service) EffectiveLevel(ctx context.Context, userID, documentID string) (permission.Level, error) {
	overrides, err := s.repo.OverridesFor(ctx, userID, documentID)
	if err != nil {
		return "", err
	}
	return permission.EffectiveLevel(userID, documentID, overrides, s.defaultLevel)
}

// authorize returns apperr.ErrForbidden unless userID may perform action on documentID.
func (s *Service) authorize(ctx context.Context, userID, documentID string, action permission.Action) error {
	level, err := s.EffectiveLevel(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if !permission.Allows(level, action) {
		return fmt.Errorf("%w: %s needs %s on %s, has %s", apperr.ErrForbidden, userID, action, documentID, level)
	}
	return nil
}

func (s *Service) publish(kind, documentID string, data any) {
	if s.notifier != nil {
		s.notifier.Publish(kind, documentID, data)
	}
}

// CreateProject creates a project.
func (s *Service) CreateProject(ctx context.Context, p models.Project) (*models.Project, error) {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
	); err != nil {
		return nil, apperr.Validation(err)
	}
	return s.repo.CreateProject(ctx, p)
}

// NewDocument is the input for CreateDocument.
type NewDocument struct {
	ID             string `json:"id"`
	ProjectID      string `json:"projectId"`
	Title          string `json:"title"`
	DocumentTypeID string `json:"documentTypeId"`
	PageCount      int    `json:"pageCount"`
	Body           string `json:"body"`
}

// Validate implements validation.Validatable.
func (d NewDocument) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ProjectID, validation.Required),
		validation.Field(&d.Title, validation.Required),
		validation.Field(&d.PageCount, validation.Min(0)),
	)
}

// CreateDocument creates a document at version 1.
func (s *Service) CreateDocument(ctx context.Context, in NewDocument) (*models.Document, error) {
	if err := in.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}
	return s.repo.CreateDocument(ctx, models.Document{
		ID:             in.ID,
		ProjectID:      in.ProjectID,
		Title:          in.Title,
		DocumentTypeID: in.DocumentTypeID,
	}, in.PageCount, in.Body)
}

// AddVersion records a new version of a document. Existing comments keep
// the version they were written against.
func (s *Service) AddVersion(ctx context.Context, documentID string, pageCount int, body string) (*models.DocumentVersion, error) {
	if pageCount < 0 {
		return nil, apperr.Validation(validation.Errors{"pageCount": validation.NewError("validation_min", "must be no less than 0")})
	}
	v, err := s.repo.AddVersion(ctx, documentID, pageCount, body)
	if err != nil {
		return nil, err
	}
	s.publish(EventVersionAdded, documentID, v)
	return v, nil
}

// DocumentDetail is a document with its versions, as seen by one user.
type DocumentDetail struct {
	models.Document
	Versions   []models.DocumentVersion `json:"versions"`
	Permission permission.Level         `json:"permission"`
}

// GetDocument returns a document if userID may view it.
func (s *Service) GetDocument(ctx context.Context, userID, documentID string) (*DocumentDetail, error) {
	level, err := s.EffectiveLevel(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	if !permission.Allows(level, permission.ActionView) {
		return nil, fmt.Errorf("%w: %s cannot view %s", apperr.ErrForbidden, userID, documentID)
	}
	doc, err := s.repo.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	versions, err := s.repo.ListVersions(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return &DocumentDetail{
		Document:   *doc,
		Versions:   nonNilSlice(versions),
		Permission: level,
	}, nil
}

// AddComment validates req, checks that userID may comment, verifies the
// target version and marker page, and stores the comment.
func (s *Service) AddComment(ctx context.Context, userID string, req models.CommentRequest) (*models.Comment, error) {
	if err := annotation.ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, req.FileID, permission.ActionComment); err != nil {
		return nil, err
	}
	ref := req.Ref()
	version, err := s.repo.GetVersion(ctx, ref.DocumentID, ref.FileVersion)
	if err != nil {
		return nil, fmt.Errorf("comment on %s: %w", ref, err)
	}
	if err := annotation.CheckMarkerPage(req.Marker, *version); err != nil {
		return nil, err
	}
	c, err := s.repo.InsertComment(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	s.publish(EventCommentCreated, c.FileID, c)
	return c, nil
}

// ListComments returns the comments on a document in chronological order.
func (s *Service) ListComments(ctx context.Context, userID, documentID string, version *int) ([]models.Comment, error) {
	if err := s.authorize(ctx, userID, documentID, permission.ActionView); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, documentID, version)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(comments), nil
}

// Decide records an approve/reject verdict on a document version.
func (s *Service) Decide(ctx context.Context, userID, documentID string, version int, outcome string) (*models.Decision, error) {
	outcome = strings.ToUpper(strings.TrimSpace(outcome))
	if err := validation.Validate(outcome,
		validation.Required,
		validation.In(models.OutcomeApproved, models.OutcomeRejected),
	); err != nil {
		return nil, apperr.Validation(validation.Errors{"outcome": err})
	}
	if err := s.authorize(ctx, userID, documentID, permission.ActionDecide); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetVersion(ctx, documentID, version); err != nil {
		return nil, err
	}
	d, err := s.repo.InsertDecision(ctx, models.Decision{
		DocumentID:  documentID,
		FileVersion: version,
		UserID:      userID,
		Outcome:     outcome,
	})
	if err != nil {
		return nil, err
	}
	s.publish(EventDecisionRecorded, documentID, d)
	return d, nil
}

// ListDecisions returns the decisions on a document.
func (s *Service) ListDecisions(ctx context.Context, userID, documentID string) ([]models.Decision, error) {
	if err := s.authorize(ctx, userID, documentID, permission.ActionView); err != nil {
		return nil, err
	}
	out, err := s.repo.ListDecisions(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(out), nil
}

// MaxSearchLimit caps the number of hits Search returns.
const MaxSearchLimit = 100

// Search runs a query and then drops documents userID cannot view.
//
// The permission pass runs over each page the store returns. Pages are
// fetched until limit viewable hits are collected or the store runs out, so
// hidden documents ranked first do not empty the result.
func (s *Service) Search(ctx context.Context, userID, query string, limit int) (search.Results, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.Validation(validation.Errors{"q": validation.ErrRequired})
	}
	if limit <= 0 {
		limit = store.DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)

	resolve := func(ctx context.Context, documentID string) (permission.Level, error) {
		return s.EffectiveLevel(ctx, userID, documentID)
	}

	out := make(search.Results, 0, limit)
	seen := make(map[string]bool)
	for offset := 0; len(out) < limit; offset += limit {
		hits, err := s.repo.Search(ctx, query, limit, offset)
		if err != nil {
			return nil, err
		}
		visible, err := search.FilterViewable(ctx, hits, resolve)
		if err != nil {
			return nil, err
		}
		// A document updated between pages can shift and show up twice.
		for i, id := range visible.DocumentIDs() {
			if !seen[id] && len(out) < limit {
				seen[id] = true
				out = append(out, visible[i])
			}
		}
		if len(hits) < limit {
			break
		}
	}
	return out, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
