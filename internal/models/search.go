package models

// SearchResult is a denormalized search hit. Rank is an opaque ordering key
// owned by the search engine; its scale carries no meaning here.
type SearchResult struct {
	DocumentID     string  `json:"documentId"`
	ProjectID      string  `json:"projectId"`
	ProjectName    string  `json:"projectName"`
	Title          string  `json:"title"`
	DocumentTypeID string  `json:"documentTypeId"`
	Snippet        *string `json:"snippet,omitempty"`
	Rank           float64 `json:"rank"`
}
