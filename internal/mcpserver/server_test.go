package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/folio/internal/docservice"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/permission"
	"github.com/starford/folio/internal/testutil"
)

func testServer(t *testing.T) (*Server, *docservice.Service) {
	t.Helper()

	db := testutil.TestDB(t)
	testutil.SeedDocument(t, db, "d1", "Lease agreement", "tenant shall pay rent", 2)

	svc, err := docservice.NewService(db, permission.View)
	if err != nil {
		t.Fatal(err)
	}
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" helper, so the handlers are invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_documents":
		result, err = srv.searchDocuments(ctx, req)
	case "list_comments":
		result, err = srv.listComments(ctx, req)
	case "add_comment":
		result, err = srv.addComment(ctx, req)
	case "check_permission":
		result, err = srv.checkPermission(ctx, req)
	case "get_permission_contract":
		result, err = srv.getPermissionContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func grant(t *testing.T, svc *docservice.Service, user string, level permission.Level) {
	t.Helper()
	if _, err := svc.SetOverride(context.Background(), permission.Override{UserID: user, DocumentID: "d1", Permission: level}); err != nil {
		t.Fatal(err)
	}
}

func TestAddAndListComments(t *testing.T) {
	srv, svc := testServer(t)
	grant(t, svc, "u1", permission.Comment)

	r := callTool(t, srv, "add_comment", map[string]interface{}{
		"user_id":      "u1",
		"document_id":  "d1",
		"file_version": float64(1),
		"comment":      "Clause 4 is unclear",
		"page_number":  float64(2),
		"x":            0.25,
		"y":            0.75,
	})
	if r.IsError {
		t.Fatalf("add_comment error: %s", resultText(r))
	}
	var c models.Comment
	if err := json.Unmarshal([]byte(resultText(r)), &c); err != nil {
		t.Fatal(err)
	}
	if c.Marker == nil || c.Marker.PageNumber != 2 || c.Marker.Position.X != 0.25 {
		t.Errorf("marker = %+v", c.Marker)
	}

	r = callTool(t, srv, "add_comment", map[string]interface{}{
		"user_id": "u1", "document_id": "d1", "file_version": float64(1), "comment": "General note",
	})
	if r.IsError {
		t.Fatalf("unanchored add_comment error: %s", resultText(r))
	}
	if strings.Contains(resultText(r), `"marker"`) {
		t.Errorf("unanchored comment has a marker: %s", resultText(r))
	}

	r = callTool(t, srv, "list_comments", map[string]interface{}{"user_id": "u1", "document_id": "d1"})
	var list []models.Comment
	if err := json.Unmarshal([]byte(resultText(r)), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("comments = %d, want 2", len(list))
	}
}

func TestAddCommentForbidden(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "add_comment", map[string]interface{}{
		"user_id": "u1", "document_id": "d1", "file_version": float64(1), "comment": "hi",
	})
	if !r.IsError {
		t.Error("expected error for a view-only user")
	}
}

func TestAddCommentValidation(t *testing.T) {
	srv, svc := testServer(t)
	grant(t, svc, "u1", permission.Comment)

	r := callTool(t, srv, "add_comment", map[string]interface{}{
		"user_id": "u1", "document_id": "d1", "file_version": float64(1), "comment": "hi", "page_number": float64(0),
	})
	if !r.IsError {
		t.Error("expected error for page 0")
	}

	r = callTool(t, srv, "add_comment", map[string]interface{}{
		"user_id": "u1", "document_id": "d1", "comment": "hi",
	})
	if !r.IsError {
		t.Error("expected error without file_version")
	}
}

func TestAddCommentRejectsFractionalNumbers(t *testing.T) {
	srv, svc := testServer(t)
	grant(t, svc, "u1", permission.Comment)

	cases := []map[string]interface{}{
		{"file_version": 1.9},
		{"file_version": -0.5},
		{"file_version": float64(1), "page_number": 1.5},
	}
	for _, extra := range cases {
		args := map[string]interface{}{"user_id": "u1", "document_id": "d1", "comment": "hi"}
		for k, v := range extra {
			args[k] = v
		}
		r := callTool(t, srv, "add_comment", args)
		if !r.IsError {
			t.Errorf("%v: expected error, got %s", extra, resultText(r))
		}
	}

	comments, err := svc.ListComments(context.Background(), "u1", "d1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 0 {
		t.Errorf("stored %d comments from rejected calls", len(comments))
	}
}

func TestListCommentsRejectsFractionalVersion(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_comments", map[string]interface{}{
		"user_id": "u1", "document_id": "d1", "version": 1.5,
	})
	if !r.IsError {
		t.Error("expected error for fractional version")
	}
}

func TestCheckPermission(t *testing.T) {
	srv, svc := testServer(t)
	grant(t, svc, "u1", permission.Comment)

	r := callTool(t, srv, "check_permission", map[string]interface{}{
		"user_id": "u1", "document_id": "d1", "required": "DECIDE",
	})
	var rep permissionReport
	if err := json.Unmarshal([]byte(resultText(r)), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Permission != permission.Comment || rep.Allowed == nil || *rep.Allowed {
		t.Errorf("report = %+v", rep)
	}

	r = callTool(t, srv, "check_permission", map[string]interface{}{
		"user_id": "u1", "document_id": "d1", "required": "OWNER",
	})
	if !r.IsError {
		t.Error("expected error for unknown required level")
	}
}

func TestSearchDocuments(t *testing.T) {
	srv, svc := testServer(t)

	r := callTool(t, srv, "search_documents", map[string]interface{}{"user_id": "u1", "query": "rent"})
	if r.IsError {
		t.Fatalf("search error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "d1") {
		t.Errorf("search result = %s", resultText(r))
	}

	grant(t, svc, "u2", permission.None)
	r = callTool(t, srv, "search_documents", map[string]interface{}{"user_id": "u2", "query": "rent"})
	if strings.Contains(resultText(r), "d1") {
		t.Errorf("hidden document returned: %s", resultText(r))
	}
}

func TestPermissionContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_permission_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "NONE < VIEW < COMMENT < DECIDE") {
		t.Error("contract missing level order")
	}
}
