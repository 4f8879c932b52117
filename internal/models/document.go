// Package models defines the wire and domain types for folio.
package models

import (
	"fmt"
	"time"
)

// DocumentRef is the (document, version) fingerprint an annotation is bound to.
type DocumentRef struct {
	DocumentID  string `json:"documentId"`
	FileVersion int    `json:"fileVersion"`
}

func (r DocumentRef) String() string {
	return fmt.Sprintf("%s@v%d", r.DocumentID, r.FileVersion)
}

// Project groups documents.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Document is the identity of a versioned document.
type Document struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	ProjectName    string    `json:"projectName"`
	Title          string    `json:"title"`
	DocumentTypeID string    `json:"documentTypeId"`
	CurrentVersion int       `json:"currentVersion"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// DocumentVersion is one immutable revision of a document.
type DocumentVersion struct {
	DocumentID string    `json:"documentId"`
	Version    int       `json:"version"`
	PageCount  int       `json:"pageCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Ref returns the fingerprint of the version.
func (v DocumentVersion) Ref() DocumentRef {
	return DocumentRef{DocumentID: v.DocumentID, FileVersion: v.Version}
}

// HasPage reports whether page is a valid 1-based page of the version.
func (v DocumentVersion) HasPage(page int) bool {
	return page >= 1 && page <= v.PageCount
}

// Decision outcomes.
const (
	OutcomeApproved = "APPROVED"
	OutcomeRejected = "REJECTED"
)

// Decision records an approve/reject verdict on a specific document version.
type Decision struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"documentId"`
	FileVersion int       `json:"fileVersion"`
	UserID      string    `json:"userId"`
	Outcome     string    `json:"outcome"`
	CreatedAt   time.Time `json:"createdAt"`
}
