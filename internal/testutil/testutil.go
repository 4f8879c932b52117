// Package testutil provides shared test helpers for databases and seeded documents.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "folio-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedDocument creates project "p1" (if needed) and a document with the given
// page count at version 1.
func SeedDocument(t *testing.T, db *store.DB, id, title, body string, pages int) *models.Document {
	t.Helper()
	ctx := context.Background()
	if _, err := db.GetProject(ctx, "p1"); err != nil {
		if _, err := db.CreateProject(ctx, models.Project{ID: "p1", Name: "Alpha"}); err != nil {
			t.Fatal(err)
		}
	}
	doc, err := db.CreateDocument(ctx, models.Document{ID: id, ProjectID: "p1", Title: title, DocumentTypeID: "report"}, pages, body)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}
