//go:build !sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/folio/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search scans the current version body with LIKE.
	return nil
}

func ftsUpsert(_ context.Context, _ *sql.Tx, _, _, _ string) error {
	// Bodies already live in document_versions.
	return nil
}

// Search performs a LIKE-based search over titles and current version bodies,
// returning at most limit hits after skipping offset. The query is matched
// literally. Rank is 2 for a title hit, 1 for a body-only hit; higher is more
// relevant.
func (db *DB) Search(ctx context.Context, query string, limit, offset int) ([]models.SearchResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if offset < 0 {
		offset = 0
	}
	like := likePattern(query)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT d.id, d.project_id, p.name, d.title, d.document_type_id,
		       CASE WHEN v.body LIKE ? ESCAPE '\' THEN substr(v.body, 1, 200) END,
		       CASE WHEN d.title LIKE ? ESCAPE '\' THEN 2.0 ELSE 1.0 END AS score
		FROM documents d
		JOIN projects p ON p.id = d.project_id
		JOIN document_versions v ON v.document_id = d.id AND v.version = d.current_version
		WHERE d.title LIKE ? ESCAPE '\' OR v.body LIKE ? ESCAPE '\'
		ORDER BY score DESC, d.updated_at DESC, d.id
		LIMIT ? OFFSET ?
	`, like, like, like, like, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	return scanSearchResults(rows)
}
