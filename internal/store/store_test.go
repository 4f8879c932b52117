package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/permission"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "folio-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedDocument(t *testing.T, db *DB, id, title, body string, pages int) *models.Document {
	t.Helper()
	ctx := context.Background()
	if _, err := db.GetProject(ctx, "p1"); errors.Is(err, apperr.ErrNotFound) {
		if _, err := db.CreateProject(ctx, models.Project{ID: "p1", Name: "Alpha"}); err != nil {
			t.Fatalf("CreateProject: %v", err)
		}
	}
	d, err := db.CreateDocument(ctx, models.Document{ID: id, ProjectID: "p1", Title: title, DocumentTypeID: "contract"}, pages, body)
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	return d
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"projects", "documents", "document_versions", "comments", "overrides", "decisions"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestCreateDocument_StartsAtVersionOne(t *testing.T) {
	db := testDB(t)
	d := seedDocument(t, db, "d1", "Lease", "rent is due monthly", 4)
	if d.CurrentVersion != 1 {
		t.Errorf("current version = %d, want 1", d.CurrentVersion)
	}
	if d.ProjectName != "Alpha" {
		t.Errorf("project name = %q", d.ProjectName)
	}
	v, err := db.GetVersion(context.Background(), "d1", 1)
	if err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
	if v.PageCount != 4 {
		t.Errorf("page count = %d, want 4", v.PageCount)
	}
}

func TestCreateDocument_UnknownProject(t *testing.T) {
	db := testDB(t)
	_, err := db.CreateDocument(context.Background(), models.Document{ID: "d1", ProjectID: "missing"}, 1, "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateDocument_Duplicate(t *testing.T) {
	db := testDB(t)
	seedDocument(t, db, "d1", "A", "", 1)
	_, err := db.CreateDocument(context.Background(), models.Document{ID: "d1", ProjectID: "p1"}, 1, "")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestAddVersion_Monotonic(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedDocument(t, db, "d1", "A", "v1", 1)

	for want := 2; want <= 4; want++ {
		v, err := db.AddVersion(ctx, "d1", want, "body")
		if err != nil {
			t.Fatalf("AddVersion: %v", err)
		}
		if v.Version != want {
			t.Errorf("version = %d, want %d", v.Version, want)
		}
	}
	d, _ := db.GetDocument(ctx, "d1")
	if d.CurrentVersion != 4 {
		t.Errorf("current version = %d, want 4", d.CurrentVersion)
	}
	versions, err := db.ListVersions(ctx, "d1")
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 4 || versions[0].Version != 1 || versions[3].Version != 4 {
		t.Errorf("versions = %+v", versions)
	}
}

func TestAddVersion_MissingDocument(t *testing.T) {
	db := testDB(t)
	if _, err := db.AddVersion(context.Background(), "nope", 1, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestComments_ChronologicalAndVersionBound(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedDocument(t, db, "d1", "A", "", 3)

	first, err := db.InsertComment(ctx, "u1", models.CommentRequest{FileID: "d1", FileVersion: 1, Comment: "first"})
	if err != nil {
		t.Fatalf("InsertComment: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Errorf("server fields not assigned: %+v", first)
	}

	if _, err := db.AddVersion(ctx, "d1", 3, ""); err != nil {
		t.Fatal(err)
	}
	marker := &models.Marker{PageNumber: 2, Position: models.Position{X: 0.25, Y: 0.75}}
	if _, err := db.InsertComment(ctx, "u2", models.CommentRequest{FileID: "d1", FileVersion: 2, Comment: "second", Marker: marker}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertComment(ctx, "u1", models.CommentRequest{FileID: "d1", FileVersion: 1, Comment: "third"}); err != nil {
		t.Fatal(err)
	}

	all, err := db.ListComments(ctx, "d1", nil)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	var texts []string
	for _, c := range all {
		texts = append(texts, c.Comment)
	}
	if len(texts) != 3 || texts[0] != "first" || texts[1] != "second" || texts[2] != "third" {
		t.Errorf("order = %v", texts)
	}
	if all[0].Marker != nil {
		t.Errorf("unanchored comment got marker %+v", all[0].Marker)
	}
	if all[1].Marker == nil || *all[1].Marker != *marker {
		t.Errorf("marker = %+v, want %+v", all[1].Marker, marker)
	}

	v1 := 1
	onV1, _ := db.ListComments(ctx, "d1", &v1)
	if len(onV1) != 2 {
		t.Errorf("version 1 comments = %d, want 2", len(onV1))
	}
	for _, c := range onV1 {
		if c.FileVersion != 1 {
			t.Errorf("comment %s re-anchored to version %d", c.ID, c.FileVersion)
		}
	}
}

func TestInsertComment_UnknownVersion(t *testing.T) {
	db := testDB(t)
	seedDocument(t, db, "d1", "A", "", 1)
	_, err := db.InsertComment(context.Background(), "u1", models.CommentRequest{FileID: "d1", FileVersion: 7, Comment: "x"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestOverrides_UpsertReplaces(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := db.UpsertOverride(ctx, permission.Override{UserID: "u1", DocumentID: "d1", Permission: permission.View, CreatedAt: t0}); err != nil {
		t.Fatalf("UpsertOverride: %v", err)
	}
	if _, err := db.UpsertOverride(ctx, permission.Override{UserID: "u1", DocumentID: "d1", Permission: permission.Decide, UserEmail: "u1@example.com", CreatedAt: t0.Add(time.Minute)}); err != nil {
		t.Fatalf("UpsertOverride: %v", err)
	}

	got, err := db.OverridesFor(ctx, "u1", "d1")
	if err != nil {
		t.Fatalf("OverridesFor: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("overrides = %d, want 1", len(got))
	}
	if got[0].Permission != permission.Decide || got[0].UserEmail != "u1@example.com" {
		t.Errorf("override = %+v", got[0])
	}
}

func TestOverrides_ListFilterAndDelete(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	for _, o := range []permission.Override{
		{UserID: "u1", DocumentID: "d1", Permission: permission.View},
		{UserID: "u1", DocumentID: "d2", Permission: permission.Comment},
		{UserID: "u2", DocumentID: "d1", Permission: permission.None},
	} {
		if _, err := db.UpsertOverride(ctx, o); err != nil {
			t.Fatal(err)
		}
	}

	byUser, _ := db.ListOverrides(ctx, OverrideFilter{UserID: "u1"})
	if len(byUser) != 2 {
		t.Errorf("u1 overrides = %d, want 2", len(byUser))
	}
	byDoc, _ := db.ListOverrides(ctx, OverrideFilter{DocumentID: "d1"})
	if len(byDoc) != 2 {
		t.Errorf("d1 overrides = %d, want 2", len(byDoc))
	}
	all, _ := db.ListOverrides(ctx, OverrideFilter{})
	if len(all) != 3 {
		t.Errorf("all overrides = %d, want 3", len(all))
	}

	if err := db.DeleteOverride(ctx, "u1", "d1"); err != nil {
		t.Fatalf("DeleteOverride: %v", err)
	}
	if err := db.DeleteOverride(ctx, "u1", "d1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestOverrides_CorruptLevelFailsClosed(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_, err := db.conn.Exec(`INSERT INTO overrides (user_id, document_id, permission, created_at) VALUES ('u1', 'd1', 'OWNER', ?)`, time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.OverridesFor(ctx, "u1", "d1"); !apperr.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestDecisions(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedDocument(t, db, "d1", "A", "", 1)

	d, err := db.InsertDecision(ctx, models.Decision{DocumentID: "d1", FileVersion: 1, UserID: "u1", Outcome: models.OutcomeApproved})
	if err != nil {
		t.Fatalf("InsertDecision: %v", err)
	}
	if d.ID == "" {
		t.Error("decision id not assigned")
	}
	if _, err := db.InsertDecision(ctx, models.Decision{DocumentID: "d1", FileVersion: 5, UserID: "u1", Outcome: models.OutcomeRejected}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	list, _ := db.ListDecisions(ctx, "d1")
	if len(list) != 1 || list[0].Outcome != models.OutcomeApproved {
		t.Errorf("decisions = %+v", list)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	seedDocument(t, db, "d1", "Supply agreement", "the uniqueword clause applies", 2)
	seedDocument(t, db, "d2", "Other", "nothing to see", 1)

	results, err := db.Search(context.Background(), "uniqueword", 10, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].DocumentID != "d1" {
		t.Fatalf("search results = %+v, want 1 hit for d1", results)
	}
	r := results[0]
	if r.ProjectID != "p1" || r.ProjectName != "Alpha" || r.DocumentTypeID != "contract" {
		t.Errorf("projection = %+v", r)
	}
	if r.Snippet == nil {
		t.Error("expected snippet for body hit")
	}
}

func TestSearch_UsesCurrentVersion(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedDocument(t, db, "d1", "Memo", "oldterm", 1)
	if _, err := db.AddVersion(ctx, "d1", 1, "newterm"); err != nil {
		t.Fatal(err)
	}

	old, _ := db.Search(ctx, "oldterm", 10, 0)
	if len(old) != 0 {
		t.Errorf("stale body still matches: %+v", old)
	}
	cur, _ := db.Search(ctx, "newterm", 10, 0)
	if len(cur) != 1 {
		t.Errorf("current body hits = %d, want 1", len(cur))
	}
}

func TestSearch_Paging(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		seedDocument(t, db, id, "Contract "+id, "contract body", 1)
	}

	first, err := db.Search(ctx, "contract", 2, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	rest, err := db.Search(ctx, "contract", 2, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(first) != 2 || len(rest) != 1 {
		t.Fatalf("pages = %d + %d, want 2 + 1", len(first), len(rest))
	}
	seen := map[string]bool{}
	for _, r := range append(first, rest...) {
		if seen[r.DocumentID] {
			t.Errorf("document %s returned twice", r.DocumentID)
		}
		seen[r.DocumentID] = true
	}
}

func TestSearch_QueryIsLiteral(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedDocument(t, db, "d1", "Plain", "ordinary words", 1)
	seedDocument(t, db, "d2", "Discount", "save 50% today", 1)

	for _, q := range []string{`"`, `AND`, `foo OR`, `(`, `_`} {
		results, err := db.Search(ctx, q, 10, 0)
		if err != nil {
			t.Errorf("Search(%q): %v", q, err)
			continue
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) = %+v, want no hits", q, results)
		}
	}

	results, err := db.Search(ctx, "%", 10, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range results {
		if r.DocumentID == "d1" {
			t.Error("% matched a document without a percent sign")
		}
	}
}

func TestFTSQuery(t *testing.T) {
	cases := map[string]string{
		"budget":         `"budget"`,
		"  two  words ":  `"two" "words"`,
		`say "hi"`:       `"say" """hi"""`,
		"":               "",
		"NEAR(a b)":      `"NEAR(a" "b)"`,
	}
	for in, want := range cases {
		if got := ftsQuery(in); got != want {
			t.Errorf("ftsQuery(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLikePattern(t *testing.T) {
	if got := likePattern(`50%_off\`); got != `%50\%\_off\\%` {
		t.Errorf("likePattern = %s", got)
	}
}
