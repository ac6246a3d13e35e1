// Package contentservice coordinates storage, schema validation, and the
// index for the content collection.
package contentservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/httperr"
	"github.com/starford/ansuz/internal/images"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/schema"
	"github.com/starford/ansuz/internal/storage"
)

var (
	// ErrExists is returned when creating a document whose path is taken.
	ErrExists = errors.New("contentservice: document already exists")
	// ErrChecksumMismatch is returned when an If-Match checksum is stale.
	ErrChecksumMismatch = errors.New("contentservice: checksum mismatch")
)

// DocumentDetail is the full representation of a document. Optional front
// matter fields stay nil when the source omits them.
type DocumentDetail struct {
	Path        string    `json:"path"`
	Route       string    `json:"route"`
	Locale      string    `json:"locale"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Image       *string   `json:"image,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Draft       bool      `json:"draft,omitempty"`
	Body        string    `json:"body"`
	Checksum    string    `json:"checksum"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	Path        string    `json:"path"`
	Route       string    `json:"route"`
	Locale      string    `json:"locale"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Checksum    string    `json:"checksum"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListParams narrows and pages ListDocuments.
type ListParams struct {
	Limit  int
	Offset int
	Tag    string
	Locale string
	Sort   string
}

// Config carries the collection settings the service needs.
type Config struct {
	DefaultLocale string
	Locales       []string
	IncludeDrafts bool
}

// Service coordinates storage, validation, and index operations.
type Service struct {
	store   storage.Provider
	db      *index.DB
	images  *images.Registry
	cfg     Config
	locales map[string]bool
}

// NewService creates a new content service.
func NewService(store storage.Provider, db *index.DB, imgs *images.Registry, cfg Config) *Service {
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = "en"
	}
	locales := make(map[string]bool, len(cfg.Locales))
	for _, code := range cfg.Locales {
		locales[code] = true
	}
	locales[cfg.DefaultLocale] = true
	return &Service{store: store, db: db, images: imgs, cfg: cfg, locales: locales}
}

// GetDocument reads a document from storage, validates it, and returns the
// full detail. Draft documents are forbidden unless drafts are enabled.
func (s *Service) GetDocument(_ context.Context, docPath string) (*DocumentDetail, error) {
	data, err := s.store.Read(docPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, httperr.NotFound()
		}
		if errors.Is(err, storage.ErrInvalidPath) {
			return nil, httperr.Forbidden()
		}
		return nil, err
	}
	doc, err := s.buildDocument(docPath, data)
	if err != nil {
		return nil, err
	}
	if doc.Draft && !s.cfg.IncludeDrafts {
		return nil, httperr.Forbidden()
	}
	return s.detailFromDocument(doc), nil
}

// GetByRoute returns the document serving route in locale from the index.
func (s *Service) GetByRoute(_ context.Context, locale, route string) (*DocumentDetail, error) {
	row, err := s.db.GetByRoute(locale, route)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, httperr.NotFound()
	}
	if row.Draft && !s.cfg.IncludeDrafts {
		return nil, httperr.Forbidden()
	}
	return s.detailFromRow(row), nil
}

// CreateDocument validates and writes a new document, then indexes it.
// Invalid content is rejected before anything reaches disk.
func (s *Service) CreateDocument(_ context.Context, docPath string, content []byte) (*DocumentDetail, error) {
	if !s.store.Matches(docPath) {
		return nil, fmt.Errorf("contentservice: %s does not match the source glob", docPath)
	}
	if _, err := s.store.Read(docPath); err == nil {
		return nil, ErrExists
	}
	doc, err := s.buildDocument(docPath, content)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(docPath, content); err != nil {
		if errors.Is(err, storage.ErrInvalidPath) {
			return nil, httperr.Forbidden()
		}
		return nil, err
	}
	if err := s.db.UpsertDocument(rowFromDocument(doc)); err != nil {
		return nil, err
	}
	return s.detailFromDocument(doc), nil
}

// UpdateDocument validates and overwrites an existing document with
// optimistic concurrency: a non-empty ifMatch must equal the current
// checksum.
func (s *Service) UpdateDocument(_ context.Context, docPath string, content []byte, ifMatch string) (*DocumentDetail, error) {
	existing, err := s.store.Read(docPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, httperr.NotFound()
		}
		if errors.Is(err, storage.ErrInvalidPath) {
			return nil, httperr.Forbidden()
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != storage.Checksum(existing) {
		return nil, fmt.Errorf("%s: %w", docPath, ErrChecksumMismatch)
	}
	doc, err := s.buildDocument(docPath, content)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(docPath, content); err != nil {
		return nil, err
	}
	if err := s.db.UpsertDocument(rowFromDocument(doc)); err != nil {
		return nil, err
	}
	return s.detailFromDocument(doc), nil
}

// DeleteDocument removes a document from storage and the index.
func (s *Service) DeleteDocument(_ context.Context, docPath string) error {
	if err := s.store.Delete(docPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return httperr.NotFound()
		}
		if errors.Is(err, storage.ErrInvalidPath) {
			return httperr.Forbidden()
		}
		return err
	}
	return s.db.DeleteDocument(docPath)
}

// ListDocuments returns paginated documents. Drafts appear only when the
// service is configured to include them.
func (s *Service) ListDocuments(_ context.Context, p ListParams) ([]DocumentListItem, int, error) {
	rows, total, err := s.db.ListDocuments(index.ListQuery{
		Limit:         p.Limit,
		Offset:        p.Offset,
		Tag:           p.Tag,
		Locale:        p.Locale,
		Sort:          p.Sort,
		IncludeDrafts: s.cfg.IncludeDrafts,
	})
	if err != nil {
		if errors.Is(err, index.ErrUnsupportedSort) {
			return nil, 0, httperr.BadRequest()
		}
		return nil, 0, err
	}
	items := make([]DocumentListItem, len(rows))
	for i, r := range rows {
		items[i] = DocumentListItem{
			Path:        r.Path,
			Route:       r.Route,
			Locale:      r.Locale,
			Title:       r.Title,
			Description: r.Description,
			Tags:        r.Tags,
			Checksum:    r.Checksum,
			UpdatedAt:   r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query, locale string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(index.SearchQuery{
		Text:          query,
		Locale:        locale,
		Limit:         limit,
		IncludeDrafts: s.cfg.IncludeDrafts,
	})
}

// Navigation builds the navigation tree for locale from indexed routes.
// Intermediate routes without a document get a title derived from their
// path segment. An empty locale means the default locale.
func (s *Service) Navigation(_ context.Context, locale string) ([]*models.NavNode, error) {
	if locale == "" {
		locale = s.cfg.DefaultLocale
	}
	entries, err := s.db.Routes(locale, s.cfg.IncludeDrafts)
	if err != nil {
		return nil, err
	}

	base := s.baseRoute(locale)
	root := &models.NavNode{Route: base}
	nodes := map[string]*models.NavNode{base: root}

	for _, e := range entries {
		n := s.ensureNode(nodes, root, base, e.Route)
		if n == root {
			continue
		}
		n.Title = e.Title
		n.Locale = e.Locale
	}
	return root.Children, nil
}

// ResolveImage maps an identifier to a URL via a configured provider. An
// empty provider name selects the default provider; a non-empty base
// override wins over the provider base entirely.
func (s *Service) ResolveImage(provider, id, baseOverride string) (images.Resolved, error) {
	p := s.images.Default()
	if provider != "" {
		var err error
		if p, err = s.images.Provider(provider); err != nil {
			return images.Resolved{}, err
		}
	}
	return p.Resolve(id, images.Options{BaseURL: baseOverride}), nil
}

// ValidateDocument parses and validates raw content without touching
// storage or the index.
func (s *Service) ValidateDocument(docPath string, data []byte) (schema.Meta, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return schema.Meta{}, fmt.Errorf("%s: %w", docPath, err)
	}
	return schema.ValidateAt(docPath, res.Frontmatter)
}

// MapDocument turns raw content into an index row. It is handed to the
// index sync and watcher as their Mapper.
func (s *Service) MapDocument(docPath string, data []byte) (index.DocumentRow, error) {
	doc, err := s.buildDocument(docPath, data)
	if err != nil {
		return index.DocumentRow{}, err
	}
	return rowFromDocument(doc), nil
}

// buildDocument parses, validates, and derives routing fields.
func (s *Service) buildDocument(docPath string, data []byte) (*models.Document, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("contentservice: %s: %w", docPath, err)
	}
	meta, err := schema.ValidateAt(docPath, res.Frontmatter)
	if err != nil {
		return nil, err
	}
	return &models.Document{
		Path:        docPath,
		Route:       routeFor(docPath),
		Locale:      s.localeFor(docPath),
		Content:     data,
		Body:        res.Body,
		Title:       meta.Title,
		Description: meta.Description,
		Image:       meta.Image,
		Tags:        meta.Tags,
		Draft:       meta.Draft,
		Checksum:    storage.Checksum(data),
		UpdatedAt:   time.Now(),
	}, nil
}

func (s *Service) detailFromDocument(d *models.Document) *DocumentDetail {
	return &DocumentDetail{
		Path:        d.Path,
		Route:       d.Route,
		Locale:      d.Locale,
		Title:       d.Title,
		Description: d.Description,
		Image:       d.Image,
		ImageURL:    s.imageURL(d.Image),
		Tags:        d.Tags,
		Draft:       d.Draft,
		Body:        d.Body,
		Checksum:    d.Checksum,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *Service) detailFromRow(r *index.DocumentRow) *DocumentDetail {
	return &DocumentDetail{
		Path:        r.Path,
		Route:       r.Route,
		Locale:      r.Locale,
		Title:       r.Title,
		Description: r.Description,
		Image:       r.Image,
		ImageURL:    s.imageURL(r.Image),
		Tags:        r.Tags,
		Draft:       r.Draft,
		Body:        r.Body,
		Checksum:    r.Checksum,
		UpdatedAt:   r.UpdatedAt,
	}
}

// imageURL resolves a document image reference through the default
// provider. Absent references resolve to an empty string, never a
// placeholder.
func (s *Service) imageURL(ref *string) string {
	if ref == nil || *ref == "" {
		return ""
	}
	return s.images.Default().Resolve(*ref, images.Options{}).URL
}

// routeFor derives the URL route for a content path: the extension is
// dropped, a trailing "index" segment collapses into its directory, and the
// result always starts with a slash.
func routeFor(docPath string) string {
	p := strings.TrimSuffix(docPath, path.Ext(docPath))
	if p == "index" {
		p = ""
	} else {
		p = strings.TrimSuffix(p, "/index")
	}
	return "/" + p
}

// localeFor returns the locale of a content path. A leading directory
// segment naming an enabled locale claims the document; everything else
// belongs to the default locale.
func (s *Service) localeFor(docPath string) string {
	if i := strings.Index(docPath, "/"); i > 0 {
		if seg := docPath[:i]; s.locales[seg] {
			return seg
		}
	}
	return s.cfg.DefaultLocale
}

// baseRoute is the navigation root for a locale: "/" for the default
// locale, "/<code>" otherwise.
func (s *Service) baseRoute(locale string) string {
	if locale == s.cfg.DefaultLocale {
		return "/"
	}
	return "/" + locale
}

func (s *Service) ensureNode(nodes map[string]*models.NavNode, root *models.NavNode, base, route string) *models.NavNode {
	if route == base {
		return root
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(route, base), "/")
	cur := root
	prefix := strings.TrimSuffix(base, "/")
	for _, seg := range strings.Split(rel, "/") {
		prefix += "/" + seg
		n, ok := nodes[prefix]
		if !ok {
			n = &models.NavNode{Route: prefix, Title: segmentTitle(seg)}
			nodes[prefix] = n
			cur.Children = append(cur.Children, n)
		}
		cur = n
	}
	return cur
}

// segmentTitle humanizes a path segment for routes without a document.
func segmentTitle(seg string) string {
	seg = strings.ReplaceAll(seg, "-", " ")
	if seg == "" {
		return seg
	}
	return strings.ToUpper(seg[:1]) + seg[1:]
}

func rowFromDocument(d *models.Document) index.DocumentRow {
	return index.DocumentRow{
		Path:        d.Path,
		Route:       d.Route,
		Locale:      d.Locale,
		Title:       d.Title,
		Description: d.Description,
		Image:       d.Image,
		Tags:        d.Tags,
		Body:        d.Body,
		Draft:       d.Draft,
		Checksum:    d.Checksum,
		UpdatedAt:   d.UpdatedAt,
	}
}
