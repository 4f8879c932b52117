package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// InsertComment stores a new comment and returns it with the server-assigned
// ID and timestamp. Comments are append-only.
func (db *DB) InsertComment(ctx context.Context, authorID string, req models.CommentRequest) (*models.Comment, error) {
	c := models.Comment{
		ID:          uuid.NewString(),
		FileID:      req.FileID,
		FileVersion: req.FileVersion,
		Comment:     req.Comment,
		AuthorID:    authorID,
		CreatedAt:   time.Now().UTC(),
	}

	var page sql.NullInt64
	var x, y sql.NullFloat64
	if req.Marker != nil {
		m := *req.Marker
		c.Marker = &m
		page = sql.NullInt64{Int64: int64(m.PageNumber), Valid: true}
		x = sql.NullFloat64{Float64: m.Position.X, Valid: true}
		y = sql.NullFloat64{Float64: m.Position.Y, Valid: true}
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO comments (id, document_id, file_version, body, page_number, pos_x, pos_y, author_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.FileID, c.FileVersion, c.Comment, page, x, y, c.AuthorID, c.CreatedAt)
	if err != nil {
		if isConstraint(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: insert comment: %w", err)
	}
	return &c, nil
}

// ListComments returns the comments of a document in insertion order.
// A non-nil version restricts the list to that version.
func (db *DB) ListComments(ctx context.Context, documentID string, version *int) ([]models.Comment, error) {
	query := `
		SELECT id, document_id, file_version, body, page_number, pos_x, pos_y, author_id, created_at
		FROM comments WHERE document_id = ?`
	args := []any{documentID}
	if version != nil {
		query += ` AND file_version = ?`
		args = append(args, *version)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list comments: %w", err)
	}
	defer rows.Close()

	var out []models.Comment
	for rows.Next() {
		var c models.Comment
		var page sql.NullInt64
		var x, y sql.NullFloat64
		if err := rows.Scan(&c.ID, &c.FileID, &c.FileVersion, &c.Comment, &page, &x, &y, &c.AuthorID, &c.CreatedAt); err != nil {
			return nil, err
		}
		if page.Valid {
			c.Marker = &models.Marker{
				PageNumber: int(page.Int64),
				Position:   models.Position{X: x.Float64, Y: y.Float64},
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
