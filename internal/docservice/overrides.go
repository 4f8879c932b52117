package docservice

import (
	"context"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/permission"
	"github.com/starford/folio/internal/store"
)

// SetOverride validates and stores an override. Display fields that are
// empty are filled from the document when it exists.
func (s *Service) SetOverride(ctx context.Context, o permission.Override) (*permission.Override, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.DocumentTitle == "" || o.ProjectName == "" {
		if doc, err := s.repo.GetDocument(ctx, o.DocumentID); err == nil {
			if o.DocumentTitle == "" {
				o.DocumentTitle = doc.Title
			}
			if o.ProjectName == "" {
				o.ProjectName = doc.ProjectName
			}
		}
	}
	saved, err := s.repo.UpsertOverride(ctx, o)
	if err != nil {
		return nil, err
	}
	s.publish(EventOverrideUpdated, saved.DocumentID, saved)
	return saved, nil
}

// RemoveOverride deletes an override; the user falls back to the default level.
func (s *Service) RemoveOverride(ctx context.Context, userID, documentID string) error {
	if userID == "" || documentID == "" {
		return apperr.ErrNotFound
	}
	if err := s.repo.DeleteOverride(ctx, userID, documentID); err != nil {
		return err
	}
	s.publish(EventOverrideRemoved, documentID, permission.Key{UserID: userID, DocumentID: documentID})
	return nil
}

// ListOverrides lists overrides, optionally filtered by user and document.
func (s *Service) ListOverrides(ctx context.Context, userID, documentID string) ([]permission.Override, error) {
	out, err := s.repo.ListOverrides(ctx, store.OverrideFilter{UserID: userID, DocumentID: documentID})
	if err != nil {
		return nil, err
	}
	return nonNilSlice(out), nil
}
