package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/ansuz/internal/contentservice"
	"github.com/starford/ansuz/internal/httperr"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/schema"
)

// Handler holds API route handlers.
type Handler struct {
	svc *contentservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *contentservice.Service) *Handler {
	return &Handler{svc: svc}
}

// documentPath extracts the document path from the URL (everything after
// /api/documents/). Supports encoded slashes (e.g. guides%2Fsetup.md).
func documentPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// intParam parses an optional non-negative integer query value.
func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("api: bad integer parameter %q", raw)
	}
	return n, nil
}

// ListDocuments handles GET /api/documents.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"))
	if err != nil {
		writeError(w, httperr.BadRequest())
		return
	}
	offset, err := intParam(q.Get("offset"))
	if err != nil {
		writeError(w, httperr.BadRequest())
		return
	}

	items, total, err := h.svc.ListDocuments(r.Context(), contentservice.ListParams{
		Limit:  limit,
		Offset: offset,
		Tag:    q.Get("tag"),
		Locale: q.Get("locale"),
		Sort:   q.Get("sort"),
	})
	if err != nil {
		slog.Error("list documents failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: items, Total: total})
}

// GetDocument handles GET /api/documents/*. The document checksum doubles
// as a strong ETag, so clients can revalidate with If-None-Match.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeError(w, httperr.BadRequest())
		return
	}
	doc, err := h.svc.GetDocument(r.Context(), path)
	if err != nil {
		var httpErr httperr.Error
		if !errors.As(err, &httpErr) {
			slog.Error("get document failed", slog.String("path", path), slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Trim(match, `"`) == doc.Checksum {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", `"`+doc.Checksum+`"`)
	writeJSON(w, http.StatusOK, doc)
}

// CreateDocument handles POST /api/documents.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, httperr.BadRequest())
		return
	}
	if req.Path == "" || req.Content == "" {
		writeError(w, httperr.BadRequest())
		return
	}
	doc, err := h.svc.CreateDocument(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		var schemaErr *schema.Error
		switch {
		case errors.Is(err, contentservice.ErrExists):
			writeConflict(w, "document already exists")
		case errors.As(err, &schemaErr):
			writeError(w, err)
		default:
			slog.Error("create document failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// UpdateDocument handles PUT /api/documents/*. A non-empty If-Match header
// must carry the current checksum.
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	path := documentPath(r)
	if path == "" {
		writeError(w, httperr.BadRequest())
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, httperr.BadRequest())
		return
	}

	var req UpdateDocumentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, httperr.BadRequest())
		return
	}
	if req.Content == "" {
		writeError(w, httperr.BadRequest())
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	doc, err := h.svc.UpdateDocument(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		var httpErr httperr.Error
		var schemaErr *schema.Error
		switch {
		case errors.Is(err, contentservice.ErrChecksumMismatch):
			writeConflict(w, "checksum mismatch")
		case errors.As(err, &httpErr), errors.As(err, &schemaErr):
			writeError(w, err)
		default:
			slog.Error("update document failed", slog.String("path", path), slog.String("error", err.Error()))
			writeError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/documents/*.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeError(w, httperr.BadRequest())
		return
	}
	if err := h.svc.DeleteDocument(r.Context(), path); err != nil {
		var httpErr httperr.Error
		if !errors.As(err, &httpErr) {
			slog.Error("delete document failed", slog.String("path", path), slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateDocument handles POST /api/documents/validate. Content is parsed
// and checked against the collection schema; nothing is written. An invalid
// document is a successful validation run, reported in the body.
func (h *Handler) ValidateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req ValidateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, httperr.BadRequest())
		return
	}
	if req.Content == "" {
		writeError(w, httperr.BadRequest())
		return
	}

	meta, err := h.svc.ValidateDocument(req.Path, []byte(req.Content))
	if err != nil {
		var schemaErr *schema.Error
		if errors.As(err, &schemaErr) {
			writeJSON(w, http.StatusOK, ValidateResponse{
				Valid:  false,
				Field:  schemaErr.Field,
				Reason: schemaErr.Reason,
			})
			return
		}
		// Parse failures are validation outcomes too.
		writeJSON(w, http.StatusOK, ValidateResponse{Valid: false, Reason: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: true, Meta: metaDTO(meta)})
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, httperr.BadRequest())
		return
	}
	locale := r.URL.Query().Get("locale")
	limit, err := intParam(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, httperr.BadRequest())
		return
	}

	results, err := h.svc.Search(r.Context(), q, locale, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: searchDTOs(results)})
}

func searchDTOs(rows []index.SearchResult) []SearchResult {
	out := make([]SearchResult, len(rows))
	for i, r := range rows {
		out[i] = SearchResult{
			Path:    r.Path,
			Route:   r.Route,
			Locale:  r.Locale,
			Title:   r.Title,
			Snippet: r.Snippet,
		}
	}
	return out
}

// Navigation handles GET /api/navigation.
func (h *Handler) Navigation(w http.ResponseWriter, r *http.Request) {
	locale := r.URL.Query().Get("locale")
	items, err := h.svc.Navigation(r.Context(), locale)
	if err != nil {
		slog.Error("navigation failed", slog.String("locale", locale), slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NavigationResponse{Items: items})
}

// ResolveImage handles GET /api/images/resolve. The id query parameter is
// required; provider selects a configured source and base overrides its
// base URL entirely.
func (h *Handler) ResolveImage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("id")
	if id == "" {
		writeError(w, httperr.MissingIDParam())
		return
	}
	resolved, err := h.svc.ResolveImage(q.Get("provider"), id, q.Get("base"))
	if err != nil {
		writeError(w, httperr.BadRequest())
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}
