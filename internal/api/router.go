package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/ansuz/internal/contentservice"
	"github.com/starford/ansuz/internal/httperr"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// assetsDir is where uploaded assets land.
func NewRouter(svc *contentservice.Service, authEnabled bool, token string, sseHandler http.Handler, assetsDir string) chi.Router {
	h := NewHandler(svc)
	ah := NewAssetHandler(assetsDir)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, httperr.NotFound())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, httperr.UnsupportedMethod())
	})

	// Documents CRUD.
	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.CreateDocument)
	r.Post("/documents/validate", h.ValidateDocument)
	r.Get("/documents/*", h.GetDocument)
	r.Put("/documents/*", h.UpdateDocument)
	r.Delete("/documents/*", h.DeleteDocument)

	// Search.
	r.Get("/search", h.Search)

	// Navigation tree.
	r.Get("/navigation", h.Navigation)

	// Image URL resolution.
	r.Get("/images/resolve", h.ResolveImage)

	// Asset upload (auth-protected).
	r.Post("/assets", ah.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
