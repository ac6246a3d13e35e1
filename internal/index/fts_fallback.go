//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not compiled in; search falls back to LIKE over documents.body.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ DocumentRow) error {
	// Body is already stored in the documents table; nothing extra to do.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(q SearchQuery) ([]SearchResult, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	like := "%" + q.Text + "%"
	rows, err := db.conn.Query(`
		SELECT path, route, locale, title, substr(body, 1, 200)
		FROM documents
		WHERE (title LIKE ? OR body LIKE ? OR tags LIKE ?)
		  AND (? = '' OR locale = ?)
		  AND (? OR draft = 0)
		ORDER BY updated_at DESC
		LIMIT ?
	`, like, like, like, q.Locale, q.Locale, q.IncludeDrafts, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Route, &r.Locale, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
