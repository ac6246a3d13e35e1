package api

import (
	"github.com/starford/ansuz/internal/contentservice"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/schema"
)

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// UpdateDocumentRequest is the request body for updating a document.
type UpdateDocumentRequest struct {
	Content string `json:"content"`
}

// ValidateDocumentRequest is the request body for validating raw content
// without writing it.
type ValidateDocumentRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// DocumentDetail is the full document response type (aliased from the domain layer).
type DocumentDetail = contentservice.DocumentDetail

// DocumentListItem is a lightweight item in a list response (aliased from the domain layer).
type DocumentListItem = contentservice.DocumentListItem

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents"`
	Total     int                `json:"total"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path"`
	Route   string `json:"route"`
	Locale  string `json:"locale"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps full-text search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// NavigationResponse wraps the navigation tree for one locale.
type NavigationResponse struct {
	Items []*models.NavNode `json:"items"`
}

// DocumentMeta is the validated front matter of a document. Optional fields
// stay absent in the JSON when the source omits them.
type DocumentMeta struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Draft       bool     `json:"draft,omitempty"`
}

func metaDTO(m schema.Meta) *DocumentMeta {
	return &DocumentMeta{
		Title:       m.Title,
		Description: m.Description,
		Image:       m.Image,
		Tags:        m.Tags,
		Draft:       m.Draft,
	}
}

// ValidateResponse reports the outcome of a validation run. Invalid content
// is a result, not a transport failure, so both outcomes use the same shape.
type ValidateResponse struct {
	Valid  bool          `json:"valid"`
	Meta   *DocumentMeta `json:"meta,omitempty"`
	Field  string        `json:"field,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

// AssetUploadResponse is returned after a successful asset upload.
type AssetUploadResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}
