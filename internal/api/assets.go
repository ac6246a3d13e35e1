package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/ansuz/internal/httperr"
)

const maxUploadBytes = 50 << 20 // 50 MB

// AssetHandler serves and accepts static asset files (images, downloads)
// referenced by documents.
type AssetHandler struct {
	dir string
}

// NewAssetHandler creates a handler rooted at the assets directory.
func NewAssetHandler(dir string) *AssetHandler {
	return &AssetHandler{dir: dir}
}

// safeName validates that the filename is a plain name (no path separators,
// no traversal) and returns the absolute path under the assets dir.
func (h *AssetHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	// Reject anything with path separators or traversal.
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	abs := filepath.Join(h.dir, cleaned)
	// Double-check the resolved path is under the assets dir.
	if !strings.HasPrefix(abs, h.dir+string(os.PathSeparator)) && abs != h.dir {
		return "", fmt.Errorf("path escapes assets directory")
	}
	return abs, nil
}

// ServeFile handles GET /assets/{filename}.
func (h *AssetHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	abs, err := h.safeName(filename)
	if err != nil {
		writeError(w, httperr.Forbidden())
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		writeError(w, httperr.NotFound())
		return
	}
	http.ServeFile(w, r, abs)
}

// Upload handles POST /api/assets (multipart/form-data, field "file").
func (h *AssetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, httperr.BadRequest())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, httperr.BadRequest())
		return
	}
	defer file.Close()

	abs, err := h.safeName(header.Filename)
	if err != nil {
		writeError(w, httperr.BadRequest())
		return
	}

	// Ensure the assets directory exists.
	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		writeError(w, httperr.InternalServer())
		return
	}

	dst, err := os.Create(abs)
	if err != nil {
		writeError(w, httperr.InternalServer())
		return
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		writeError(w, httperr.InternalServer())
		return
	}

	writeJSON(w, http.StatusCreated, AssetUploadResponse{
		Filename: header.Filename,
		Size:     written,
		URL:      "/assets/" + header.Filename,
	})
}
