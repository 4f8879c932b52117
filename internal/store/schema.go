// Package store persists documents, comments, overrides and decisions in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS documents (
	id               TEXT PRIMARY KEY,
	project_id       TEXT NOT NULL REFERENCES projects(id),
	title            TEXT NOT NULL DEFAULT '',
	document_type_id TEXT NOT NULL DEFAULT '',
	current_version  INTEGER NOT NULL DEFAULT 0,
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS document_versions (
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	version     INTEGER NOT NULL,
	page_count  INTEGER NOT NULL DEFAULT 0,
	body        TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (document_id, version)
);

CREATE TABLE IF NOT EXISTS comments (
	id           TEXT PRIMARY KEY,
	document_id  TEXT NOT NULL,
	file_version INTEGER NOT NULL,
	body         TEXT NOT NULL,
	page_number  INTEGER,
	pos_x        REAL,
	pos_y        REAL,
	author_id    TEXT NOT NULL,
	created_at   DATETIME NOT NULL,
	FOREIGN KEY (document_id, file_version) REFERENCES document_versions(document_id, version)
);

CREATE TABLE IF NOT EXISTS overrides (
	user_id        TEXT NOT NULL,
	document_id    TEXT NOT NULL,
	permission     TEXT NOT NULL,
	user_email     TEXT NOT NULL DEFAULT '',
	document_title TEXT NOT NULL DEFAULT '',
	project_name   TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL,
	PRIMARY KEY (user_id, document_id)
);

CREATE TABLE IF NOT EXISTS decisions (
	id           TEXT PRIMARY KEY,
	document_id  TEXT NOT NULL,
	file_version INTEGER NOT NULL,
	user_id      TEXT NOT NULL,
	outcome      TEXT NOT NULL,
	created_at   DATETIME NOT NULL,
	FOREIGN KEY (document_id, file_version) REFERENCES document_versions(document_id, version)
);

CREATE INDEX IF NOT EXISTS idx_documents_project ON documents(project_id);
CREATE INDEX IF NOT EXISTS idx_comments_document ON comments(document_id, file_version);
CREATE INDEX IF NOT EXISTS idx_overrides_document ON overrides(document_id);
CREATE INDEX IF NOT EXISTS idx_decisions_document ON decisions(document_id, file_version);
`

// DB wraps a sql.DB with store-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// Write transactions take the database lock up front so that version
// numbers are assigned without races.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func isConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}
