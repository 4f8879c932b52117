package store

import (
	"database/sql"
	"strings"

	"github.com/starford/folio/internal/models"
)

// DefaultSearchLimit is the page size used when a caller passes no limit.
const DefaultSearchLimit = 20

// ftsQuery turns free text into an FTS5 query that matches every term.
// Each term is quoted, so operators and punctuation are searched literally.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern returns a LIKE pattern matching q as a literal substring.
// Use it with ESCAPE '\'.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

func scanSearchResults(rows *sql.Rows) ([]models.SearchResult, error) {
	defer rows.Close()

	var out []models.SearchResult
	for rows.Next() {
		var r models.SearchResult
		var snippet sql.NullString
		if err := rows.Scan(&r.DocumentID, &r.ProjectID, &r.ProjectName, &r.Title, &r.DocumentTypeID, &snippet, &r.Rank); err != nil {
			return nil, err
		}
		if snippet.Valid && snippet.String != "" {
			s := snippet.String
			r.Snippet = &s
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
