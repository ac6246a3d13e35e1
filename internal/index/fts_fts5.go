//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
			path UNINDEXED,
			route UNINDEXED,
			locale UNINDEXED,
			draft UNINDEXED,
			title,
			description,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, d DocumentRow) error {
	_, _ = tx.Exec(`DELETE FROM documents_fts WHERE path = ?`, d.Path)
	description := ""
	if d.Description != nil {
		description = *d.Description
	}
	_, err := tx.Exec(`
		INSERT INTO documents_fts (path, route, locale, draft, title, description, body, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.Path, d.Route, d.Locale, d.Draft, d.Title, description, d.Body, strings.Join(d.Tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM documents_fts WHERE path = ?`, path)
}

// Search performs an FTS5 full-text search and returns matching results with
// snippets, best match first.
func (db *DB) Search(q SearchQuery) ([]SearchResult, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       route,
		       locale,
		       title,
		       snippet(documents_fts, 6, '<b>', '</b>', '...', 64)
		FROM documents_fts
		WHERE documents_fts MATCH ?
		  AND (? = '' OR locale = ?)
		  AND (? OR draft = 0)
		ORDER BY rank
		LIMIT ?
	`, q.Text, q.Locale, q.Locale, q.IncludeDrafts, q.Limit)
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
