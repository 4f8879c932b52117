package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// CreateProject inserts a project. An empty ID is generated.
func (db *DB) CreateProject(ctx context.Context, p models.Project) (*models.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)`,
		p.ID, p.Name, p.CreatedAt)
	if err != nil {
		if isConstraint(err) {
			return nil, apperr.ErrAlreadyExists
		}
		return nil, fmt.Errorf("store: create project: %w", err)
	}
	return &p, nil
}

// GetProject returns a project by ID.
func (db *DB) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get project: %w", err)
	}
	return &p, nil
}

// CreateDocument inserts a document together with its first version.
func (db *DB) CreateDocument(ctx context.Context, d models.Document, pageCount int, body string) (*models.Document, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var projectName string
	err = tx.QueryRowContext(ctx, `SELECT name FROM projects WHERE id = ?`, d.ProjectID).Scan(&projectName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: lookup project: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, project_id, title, document_type_id, current_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
	`, d.ID, d.ProjectID, d.Title, d.DocumentTypeID, now, now)
	if err != nil {
		if isConstraint(err) {
			return nil, apperr.ErrAlreadyExists
		}
		return nil, fmt.Errorf("store: insert document: %w", err)
	}
	if err := insertVersion(ctx, tx, d.ID, 1, pageCount, body, now); err != nil {
		return nil, err
	}
	if err := ftsUpsert(ctx, tx, d.ID, d.Title, body); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}

	d.ProjectName = projectName
	d.CurrentVersion = 1
	d.CreatedAt = now
	d.UpdatedAt = now
	return &d, nil
}

// AddVersion appends a new version, numbered one above the current one.
func (db *DB) AddVersion(ctx context.Context, documentID string, pageCount int, body string) (*models.DocumentVersion, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var current int
	var title string
	err = tx.QueryRowContext(ctx,
		`SELECT current_version, title FROM documents WHERE id = ?`, documentID,
	).Scan(&current, &title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read current version: %w", err)
	}

	now := time.Now().UTC()
	next := current + 1
	if err := insertVersion(ctx, tx, documentID, next, pageCount, body, now); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET current_version = ?, updated_at = ? WHERE id = ?`,
		next, now, documentID); err != nil {
		return nil, fmt.Errorf("store: bump version: %w", err)
	}
	if err := ftsUpsert(ctx, tx, documentID, title, body); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return &models.DocumentVersion{
		DocumentID: documentID,
		Version:    next,
		PageCount:  pageCount,
		CreatedAt:  now,
	}, nil
}

func insertVersion(ctx context.Context, tx *sql.Tx, documentID string, version, pageCount int, body string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO document_versions (document_id, version, page_count, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, documentID, version, pageCount, body, at)
	if err != nil {
		if isConstraint(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("store: insert version: %w", err)
	}
	return nil
}

// GetDocument returns a document with its project name.
func (db *DB) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var d models.Document
	err := db.conn.QueryRowContext(ctx, `
		SELECT d.id, d.project_id, p.name, d.title, d.document_type_id, d.current_version, d.created_at, d.updated_at
		FROM documents d
		JOIN projects p ON p.id = d.project_id
		WHERE d.id = ?
	`, id).Scan(&d.ID, &d.ProjectID, &d.ProjectName, &d.Title, &d.DocumentTypeID, &d.CurrentVersion, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get document: %w", err)
	}
	return &d, nil
}

// GetVersion returns one version of a document.
func (db *DB) GetVersion(ctx context.Context, documentID string, version int) (*models.DocumentVersion, error) {
	v := models.DocumentVersion{DocumentID: documentID, Version: version}
	err := db.conn.QueryRowContext(ctx, `
		SELECT page_count, created_at FROM document_versions
		WHERE document_id = ? AND version = ?
	`, documentID, version).Scan(&v.PageCount, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get version: %w", err)
	}
	return &v, nil
}

// ListVersions returns every version of a document, oldest first.
func (db *DB) ListVersions(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT version, page_count, created_at FROM document_versions
		WHERE document_id = ? ORDER BY version
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("store: list versions: %w", err)
	}
	defer rows.Close()

	var out []models.DocumentVersion
	for rows.Next() {
		v := models.DocumentVersion{DocumentID: documentID}
		if err := rows.Scan(&v.Version, &v.PageCount, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
