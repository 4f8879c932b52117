package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// InsertDecision records an approve/reject verdict.
func (db *DB) InsertDecision(ctx context.Context, d models.Decision) (*models.Decision, error) {
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now().UTC()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO decisions (id, document_id, file_version, user_id, outcome, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.ID, d.DocumentID, d.FileVersion, d.UserID, d.Outcome, d.CreatedAt)
	if err != nil {
		if isConstraint(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: insert decision: %w", err)
	}
	return &d, nil
}

// ListDecisions returns the decisions on a document, oldest first.
func (db *DB) ListDecisions(ctx context.Context, documentID string) ([]models.Decision, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, document_id, file_version, user_id, outcome, created_at
		FROM decisions WHERE document_id = ?
		ORDER BY created_at, rowid
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("store: list decisions: %w", err)
	}
	defer rows.Close()

	var out []models.Decision
	for rows.Next() {
		var d models.Decision
		if err := rows.Scan(&d.ID, &d.DocumentID, &d.FileVersion, &d.UserID, &d.Outcome, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
