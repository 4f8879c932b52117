package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/permission"
)

// UpsertOverride stores o, replacing any existing override for the same
// (user, document). Only the latest write is kept.
func (db *DB) UpsertOverride(ctx context.Context, o permission.Override) (*permission.Override, error) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO overrides (user_id, document_id, permission, user_email, document_title, project_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, document_id) DO UPDATE SET
			permission     = excluded.permission,
			user_email     = excluded.user_email,
			document_title = excluded.document_title,
			project_name   = excluded.project_name,
			created_at     = excluded.created_at
	`, o.UserID, o.DocumentID, string(o.Permission), o.UserEmail, o.DocumentTitle, o.ProjectName, o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: upsert override: %w", err)
	}
	return &o, nil
}

// DeleteOverride removes the override for (userID, documentID).
func (db *DB) DeleteOverride(ctx context.Context, userID, documentID string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM overrides WHERE user_id = ? AND document_id = ?`, userID, documentID)
	if err != nil {
		return fmt.Errorf("store: delete override: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// OverridesFor returns the overrides stored for (userID, documentID).
func (db *DB) OverridesFor(ctx context.Context, userID, documentID string) ([]permission.Override, error) {
	return db.ListOverrides(ctx, OverrideFilter{UserID: userID, DocumentID: documentID})
}

// OverrideFilter narrows ListOverrides. Empty fields match everything.
type OverrideFilter struct {
	UserID     string
	DocumentID string
}

// ListOverrides returns overrides matching f, newest first.
// Stored levels are re-parsed so a corrupted row fails instead of granting access.
func (db *DB) ListOverrides(ctx context.Context, f OverrideFilter) ([]permission.Override, error) {
	var where []string
	var args []any
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.DocumentID != "" {
		where = append(where, "document_id = ?")
		args = append(args, f.DocumentID)
	}
	query := `SELECT user_id, document_id, permission, user_email, document_title, project_name, created_at FROM overrides`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, user_id, document_id"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list overrides: %w", err)
	}
	defer rows.Close()

	var out []permission.Override
	for rows.Next() {
		var o permission.Override
		var raw string
		if err := rows.Scan(&o.UserID, &o.DocumentID, &raw, &o.UserEmail, &o.DocumentTitle, &o.ProjectName, &o.CreatedAt); err != nil {
			return nil, err
		}
		level, err := permission.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("store: override %s: %w", o.Key(), err)
		}
		o.Permission = level
		out = append(out, o)
	}
	return out, rows.Err()
}
