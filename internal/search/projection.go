// Package search exposes search hits as delivered by the search engine.
//
// Results are neither re-ranked nor filtered here. Hiding documents a user
// may not view is a separate, explicit pass (FilterViewable).
package search

import (
	"context"
	"fmt"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/permission"
)

// Results is an ordered sequence of hits. The order is the engine's.
type Results []models.SearchResult

// DocumentIDs returns the document IDs in result order.
func (r Results) DocumentIDs() []string {
	ids := make([]string, len(r))
	for i, hit := range r {
		ids[i] = hit.DocumentID
	}
	return ids
}

// LevelResolver returns the effective level of the current user on a document.
type LevelResolver func(ctx context.Context, documentID string) (permission.Level, error)

// FilterViewable keeps only hits whose document resolves to at least VIEW.
// Relative order of the kept hits is unchanged and the input is not modified.
func FilterViewable(ctx context.Context, results Results, resolve LevelResolver) (Results, error) {
	out := make(Results, 0, len(results))
	for _, hit := range results {
		level, err := resolve(ctx, hit.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("search: resolve %s: %w", hit.DocumentID, err)
		}
		if permission.Allows(level, permission.ActionView) {
			out = append(out, hit)
		}
	}
	return out, nil
}
