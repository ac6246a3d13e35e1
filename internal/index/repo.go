package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DocumentRow represents a row in the documents table. Description and
// Image stay nil when the source document omits them.
type DocumentRow struct {
	Path        string
	Route       string
	Locale      string
	Title       string
	Description *string
	Image       *string
	Tags        []string
	Body        string
	Draft       bool
	Checksum    string
	UpdatedAt   time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Route   string
	Locale  string
	Title   string
	Snippet string
}

// RouteEntry is a route/title pair used to build navigation.
type RouteEntry struct {
	Route  string
	Locale string
	Title  string
}

// ListQuery narrows and pages ListDocuments results.
type ListQuery struct {
	Limit         int
	Offset        int
	Tag           string
	Locale        string
	Sort          string
	IncludeDrafts bool
}

// SearchQuery narrows Search results.
type SearchQuery struct {
	Text          string
	Locale        string
	Limit         int
	IncludeDrafts bool
}

// ErrUnsupportedSort reports a sort key outside the allowed column set.
var ErrUnsupportedSort = errors.New("index: unsupported sort")

var sortColumns = map[string]string{
	"":           "updated_at DESC",
	"updated_at": "updated_at DESC",
	"title":      "title ASC",
	"path":       "path ASC",
	"route":      "route ASC",
}

// UpsertDocument inserts or replaces a document and its FTS entry within a
// transaction.
func (db *DB) UpsertDocument(d DocumentRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(d.Tags)

	_, err = tx.Exec(`
		INSERT INTO documents (path, route, locale, title, description, image, tags, body, draft, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			route       = excluded.route,
			locale      = excluded.locale,
			title       = excluded.title,
			description = excluded.description,
			image       = excluded.image,
			tags        = excluded.tags,
			body        = excluded.body,
			draft       = excluded.draft,
			checksum    = excluded.checksum,
			updated_at  = excluded.updated_at
	`, d.Path, d.Route, d.Locale, d.Title, d.Description, d.Image, string(tagsJSON), d.Body, d.Draft, d.Checksum, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, d); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteDocument removes a document and its FTS entry.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM documents WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or empty string if
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

const documentColumns = `path, route, locale, title, description, image, tags, body, draft, checksum, updated_at`

func scanDocument(scan func(dest ...any) error) (*DocumentRow, error) {
	var (
		d           DocumentRow
		description sql.NullString
		image       sql.NullString
		tagsJSON    string
	)
	err := scan(&d.Path, &d.Route, &d.Locale, &d.Title, &description, &image, &tagsJSON, &d.Body, &d.Draft, &d.Checksum, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		d.Description = &description.String
	}
	if image.Valid {
		d.Image = &image.String
	}
	if tagsJSON != "" && tagsJSON != "null" {
		if err := json.Unmarshal([]byte(tagsJSON), &d.Tags); err != nil {
			return nil, fmt.Errorf("index: decode tags for %s: %w", d.Path, err)
		}
	}
	return &d, nil
}

// GetByPath returns the indexed document at path, or nil when not indexed.
func (db *DB) GetByPath(path string) (*DocumentRow, error) {
	row := db.conn.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE path = ?`, path)
	d, err := scanDocument(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get by path: %w", err)
	}
	return d, nil
}

// GetByRoute returns the document serving route in locale, or nil when no
// document claims it. When two paths map to the same route the
// lexicographically first path wins, so lookups stay deterministic.
func (db *DB) GetByRoute(locale, route string) (*DocumentRow, error) {
	row := db.conn.QueryRow(`
		SELECT `+documentColumns+`
		FROM documents
		WHERE locale = ? AND route = ?
		ORDER BY path
		LIMIT 1
	`, locale, route)
	d, err := scanDocument(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get by route: %w", err)
	}
	return d, nil
}

// ListDocuments returns one page of documents plus the total count matching
// the query.
func (db *DB) ListDocuments(q ListQuery) ([]DocumentRow, int, error) {
	order, ok := sortColumns[q.Sort]
	if !ok {
		return nil, 0, fmt.Errorf("%w %q", ErrUnsupportedSort, q.Sort)
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	where := []string{"1=1"}
	var args []any
	if q.Tag != "" {
		where = append(where, `tags LIKE ?`)
		args = append(args, `%"`+q.Tag+`"%`)
	}
	if q.Locale != "" {
		where = append(where, `locale = ?`)
		args = append(args, q.Locale)
	}
	if !q.IncludeDrafts {
		where = append(where, `draft = 0`)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM documents WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}

	rows, err := db.conn.Query(
		`SELECT `+documentColumns+` FROM documents WHERE `+cond+` ORDER BY `+order+` LIMIT ? OFFSET ?`,
		append(args, q.Limit, q.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		d, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

// Routes returns every route/title pair in locale, ordered by route. Draft
// documents are skipped unless includeDrafts is set.
func (db *DB) Routes(locale string, includeDrafts bool) ([]RouteEntry, error) {
	where := `locale = ?`
	if !includeDrafts {
		where += ` AND draft = 0`
	}
	rows, err := db.conn.Query(`SELECT route, locale, title FROM documents WHERE `+where+` ORDER BY route, path`, locale)
	if err != nil {
		return nil, fmt.Errorf("index: routes: %w", err)
	}
	defer rows.Close()

	var out []RouteEntry
	seen := make(map[string]struct{})
	for rows.Next() {
		var e RouteEntry
		if err := rows.Scan(&e.Route, &e.Locale, &e.Title); err != nil {
			return nil, err
		}
		// Two paths can claim one route; keep the first (lowest path).
		if _, dup := seen[e.Route]; dup {
			continue
		}
		seen[e.Route] = struct{}{}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AllPaths returns every indexed document path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns a path to checksum map for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
