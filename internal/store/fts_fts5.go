//go:build sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/folio/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
			document_id UNINDEXED,
			title,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(ctx context.Context, tx *sql.Tx, documentID, title, body string) error {
	_, _ = tx.ExecContext(ctx, `DELETE FROM documents_fts WHERE document_id = ?`, documentID)
	_, err := tx.ExecContext(ctx, `INSERT INTO documents_fts (document_id, title, body) VALUES (?, ?, ?)`,
		documentID, title, body)
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

// Search runs an FTS5 query, returning at most limit hits after skipping
// offset. Every term of query must match; terms are taken literally. Rank is
// the bm25 score reported by SQLite, where lower means more relevant; results
// come back in that order.
func (db *DB) Search(ctx context.Context, query string, limit, offset int) ([]models.SearchResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if offset < 0 {
		offset = 0
	}
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT d.id, d.project_id, p.name, d.title, d.document_type_id,
		       snippet(documents_fts, 2, '<b>', '</b>', '...', 32),
		       documents_fts.rank
		FROM documents_fts
		JOIN documents d ON d.id = documents_fts.document_id
		JOIN projects p ON p.id = d.project_id
		WHERE documents_fts MATCH ?
		ORDER BY documents_fts.rank, d.id
		LIMIT ? OFFSET ?
	`, match, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	return scanSearchResults(rows)
}
