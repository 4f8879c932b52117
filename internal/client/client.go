// Package client is a Go client for the folio REST API.
//
// Responses are returned as envelopes without interpretation. Callers check
// Envelope.OK before using the payload.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/starford/folio/internal/models"
)

// userHeader names the user a request acts for.
const userHeader = "X-User-ID"

// Client talks to a folio server.
type Client struct {
	baseURL string
	token   string
	userID  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithUser sets the user the client acts for.
func WithUser(userID string) Option {
	return func(c *Client) {
		c.userID = userID
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a client for the API rooted at baseURL (e.g. http://host:8080/api).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: encode body: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userID != "" {
		req.Header.Set(userHeader, c.userID)
	}
	return req, nil
}

// send performs req and decodes the response body into out regardless of
// the HTTP status. It returns the status code.
func (c *Client) send(req *http.Request, out any) (int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("client: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("client: %s %s: decode %d response: %w", req.Method, req.URL.Path, resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}

func doEnvelope[T any](c *Client, ctx context.Context, method, path string, body any) (models.Envelope[T], error) {
	var env models.Envelope[T]
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return env, err
	}
	_, err = c.send(req, &env)
	return env, err
}

// CreateComment posts req to the document named by req.FileID.
func (c *Client) CreateComment(ctx context.Context, req models.CommentRequest) (models.Envelope[*models.Comment], error) {
	return doEnvelope[*models.Comment](c, ctx, http.MethodPost, "/documents/"+url.PathEscape(req.FileID)+"/comments", req)
}

// CommentList is the payload of ListComments.
type CommentList struct {
	Comments []models.Comment `json:"comments"`
}

// ListComments lists comments on a document, optionally for one version.
func (c *Client) ListComments(ctx context.Context, documentID string, version *int) (models.Envelope[CommentList], error) {
	path := "/documents/" + url.PathEscape(documentID) + "/comments"
	if version != nil {
		path += "?version=" + strconv.Itoa(*version)
	}
	return doEnvelope[CommentList](c, ctx, http.MethodGet, path, nil)
}

// SearchResults is the payload of Search.
type SearchResults struct {
	Results []models.SearchResult `json:"results"`
}

// Search runs a full-text query. A limit of zero uses the server default.
func (c *Client) Search(ctx context.Context, query string, limit int) (models.Envelope[SearchResults], error) {
	q := url.Values{"q": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return doEnvelope[SearchResults](c, ctx, http.MethodGet, "/search?"+q.Encode(), nil)
}

// Register submits a tenant registration to the registration endpoint at
// registerURL. A 2xx status decodes the success payload; any other status
// decodes a *models.RegistrationError, which is returned as regErr.
func (c *Client) Register(ctx context.Context, registerURL string, in models.RegistrationRequest) (resp *models.RegistrationResponse, regErr *models.RegistrationError, err error) {
	b, err := json.Marshal(in)
	if err != nil {
		return nil, nil, fmt.Errorf("client: encode registration: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, registerURL, bytes.NewReader(b))
	if err != nil {
		return nil, nil, fmt.Errorf("client: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("client: register: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		var out models.RegistrationResponse
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
			return nil, nil, fmt.Errorf("client: decode registration: %w", err)
		}
		return &out, nil, nil
	}
	var out models.RegistrationError
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, nil, fmt.Errorf("client: decode registration error (%d): %w", res.StatusCode, err)
	}
	return nil, &out, nil
}
