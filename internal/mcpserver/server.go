// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes folio tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/annotation"
	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/docservice"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/permission"
)

const contractURI = "folio://permission-contract"

// Server wraps the MCP server with folio tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all folio tools registered.
func New(svc *docservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Folio",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search over documents the user may view."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User the search runs for")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("list_comments",
		mcp.WithDescription("List comments on a document in the order they were written."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User reading the comments")),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document ID")),
		mcp.WithNumber("version", mcp.Description("Optional version to restrict to")),
	), s.listComments)

	s.mcp.AddTool(mcp.NewTool("add_comment",
		mcp.WithDescription("Comment on a specific version of a document, optionally anchored "+
			"to a page position. Read the contract first via get_permission_contract or the "+
			contractURI+" resource."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Comment author")),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document ID")),
		mcp.WithNumber("file_version", mcp.Required(), mcp.Description("Version the comment is written against")),
		mcp.WithString("comment", mcp.Required(), mcp.Description("Comment text")),
		mcp.WithNumber("page_number", mcp.Description("1-based page for the marker; omit for an unanchored comment")),
		mcp.WithNumber("x", mcp.Description("Marker x coordinate")),
		mcp.WithNumber("y", mcp.Description("Marker y coordinate")),
	), s.addComment)

	s.mcp.AddTool(mcp.NewTool("check_permission",
		mcp.WithDescription("Report a user's effective level on a document and whether it meets a required level."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document ID")),
		mcp.WithString("required", mcp.Description("Level to test against: VIEW, COMMENT or DECIDE")),
	), s.checkPermission)

	s.mcp.AddTool(mcp.NewTool("get_permission_contract",
		mcp.WithDescription("Returns the folio permission and comment contract."),
	), s.getPermissionContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Permission Contract",
			mcp.WithResourceDescription("Permission levels and comment rules enforced by folio."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// number returns a numeric argument. JSON numbers arrive as float64.
func number(req mcp.CallToolRequest, key string) (float64, bool) {
	switch v := req.GetArguments()[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

var errNotInteger = validation.NewError("validation_integer", "must be a whole number")

// integer returns a numeric argument that must be a whole number in int32
// range. Fractions are rejected rather than truncated.
func integer(req mcp.CallToolRequest, key string) (n int, ok bool, err error) {
	v, ok := number(req, key)
	if !ok {
		return 0, false, nil
	}
	if math.IsNaN(v) || v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, true, apperr.Validation(validation.Errors{key: errNotInteger})
	}
	return int(v), true, nil
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, user, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) listComments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	docID, err := req.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var version *int
	v, ok, err := integer(req, "version")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		version = &v
	}
	comments, err := s.svc.ListComments(ctx, user, docID, version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(comments), nil
}

func (s *Server) addComment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	docID, err := req.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("comment")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	version, ok, err := integer(req, "file_version")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("required argument \"file_version\" not found"), nil
	}

	var marker *models.Marker
	page, ok, err := integer(req, "page_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		x, _ := number(req, "x")
		y, _ := number(req, "y")
		marker = &models.Marker{PageNumber: page, Position: models.Position{X: x, Y: y}}
	}

	cr, err := annotation.BuildCommentRequest(docID, version, text, marker)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.AddComment(ctx, user, cr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(c), nil
}

type permissionReport struct {
	UserID     string           `json:"userId"`
	DocumentID string           `json:"documentId"`
	Permission permission.Level `json:"permission"`
	Required   permission.Level `json:"required,omitempty"`
	Allowed    *bool            `json:"allowed,omitempty"`
}

func (s *Server) checkPermission(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	docID, err := req.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	level, err := s.svc.EffectiveLevel(ctx, user, docID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report := permissionReport{UserID: user, DocumentID: docID, Permission: level}

	if raw, ok := req.GetArguments()["required"].(string); ok && raw != "" {
		required, err := permission.ParseLevel(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("required: %v", err)), nil
		}
		allowed := permission.HasAtLeast(level, required)
		report.Required = required
		report.Allowed = &allowed
	}
	return jsonResult(report), nil
}

func (s *Server) getPermissionContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PermissionContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     PermissionContract,
		},
	}, nil
}
