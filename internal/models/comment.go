package models

import "time"

// Position is a coordinate on a rendered page. Its valid range belongs to the renderer.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Marker anchors a comment to a location on a page.
type Marker struct {
	PageNumber int      `json:"pageNumber"`
	Position   Position `json:"position"`
}

// CommentRequest is the transport payload for a new comment.
// Marker is omitted from the encoding when nil; a decoded null is also nil.
type CommentRequest struct {
	FileID      string  `json:"fileId"`
	FileVersion int     `json:"fileVersion"`
	Comment     string  `json:"comment"`
	Marker      *Marker `json:"marker,omitempty"`
}

// Ref returns the fingerprint the request targets.
func (r CommentRequest) Ref() DocumentRef {
	return DocumentRef{DocumentID: r.FileID, FileVersion: r.FileVersion}
}

// Comment is a stored, immutable comment. ID, AuthorID and CreatedAt are assigned by the server.
type Comment struct {
	ID          string    `json:"id"`
	FileID      string    `json:"fileId"`
	FileVersion int       `json:"fileVersion"`
	Comment     string    `json:"comment"`
	Marker      *Marker   `json:"marker,omitempty"`
	AuthorID    string    `json:"authorId"`
	CreatedAt   time.Time `json:"createdAt"`
}
