package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/ansuz/internal/contentservice"
	"github.com/starford/ansuz/internal/httperr"
	"github.com/starford/ansuz/internal/i18n"
	"github.com/starford/ansuz/internal/render"
)

// themeCookie overrides the configured theme per visitor.
const themeCookie = "theme"

// PageHandler serves rendered HTML pages for document routes. The default
// locale lives at "/", other locales under "/<code>/".
type PageHandler struct {
	svc    *contentservice.Service
	md     *render.Renderer
	layout *render.PageRenderer
	bundle *i18n.Bundle
	site   render.Site
	theme  string
}

// NewPageHandler creates a page handler.
func NewPageHandler(svc *contentservice.Service, md *render.Renderer, layout *render.PageRenderer, bundle *i18n.Bundle, site render.Site, theme string) *PageHandler {
	return &PageHandler{svc: svc, md: md, layout: layout, bundle: bundle, site: site, theme: theme}
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	locale, route := h.splitLocale(r.URL.Path)

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.errorPage(w, r, locale, httperr.UnsupportedMethod())
		return
	}

	doc, err := h.svc.GetByRoute(r.Context(), locale, route)
	if err != nil {
		var httpErr httperr.Error
		if errors.As(err, &httpErr) {
			h.errorPage(w, r, locale, httpErr)
			return
		}
		slog.Error("page lookup failed",
			slog.String("route", route),
			slog.String("locale", locale),
			slog.String("error", err.Error()))
		h.errorPage(w, r, locale, httperr.InternalServer())
		return
	}

	// The checksum doubles as a strong ETag.
	etag := `"` + doc.Checksum + `"`
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Trim(match, `"`) == doc.Checksum {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	body, err := h.md.Render(doc.Body)
	if err != nil {
		slog.Error("page render failed", slog.String("path", doc.Path), slog.String("error", err.Error()))
		h.errorPage(w, r, locale, httperr.InternalServer())
		return
	}

	page := render.Page{
		Site:       h.site,
		Title:      doc.Title,
		Image:      doc.ImageURL,
		Route:      doc.Route,
		Locale:     locale,
		Theme:      h.themeFor(r),
		Tags:       doc.Tags,
		Body:       body,
		Nav:        h.navLinks(r, locale),
		Translator: h.bundle.Func(locale),
	}
	if doc.Description != nil {
		page.Description = *doc.Description
	}

	var buf bytes.Buffer
	if err := h.layout.Page(&buf, page); err != nil {
		slog.Error("page layout failed", slog.String("path", doc.Path), slog.String("error", err.Error()))
		h.errorPage(w, r, locale, httperr.InternalServer())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(buf.Bytes())
	}
}

// splitLocale reads the locale off the leading path segment. Routes keep
// their locale prefix; only the lookup locale is derived here. Paths without
// an enabled locale prefix belong to the default locale.
func (h *PageHandler) splitLocale(urlPath string) (locale, route string) {
	trimmed := strings.Trim(urlPath, "/")
	route = "/" + trimmed
	seg, _, _ := strings.Cut(trimmed, "/")
	if seg != "" && seg != h.bundle.Fallback() && h.bundle.Has(seg) {
		return seg, route
	}
	return h.bundle.Fallback(), route
}

// themeFor returns the visitor theme: cookie override first, configured
// default otherwise. Unknown cookie values are ignored.
func (h *PageHandler) themeFor(r *http.Request) string {
	if c, err := r.Cookie(themeCookie); err == nil {
		switch c.Value {
		case "system", "light", "dark":
			return c.Value
		}
	}
	return h.theme
}

// navLinks flattens the top level of the navigation tree for the header.
func (h *PageHandler) navLinks(r *http.Request, locale string) []render.NavLink {
	nodes, err := h.svc.Navigation(r.Context(), locale)
	if err != nil {
		slog.Error("navigation failed", slog.String("locale", locale), slog.String("error", err.Error()))
		return nil
	}
	links := make([]render.NavLink, 0, len(nodes))
	for _, n := range nodes {
		links = append(links, render.NavLink{Route: n.Route, Title: n.Title})
	}
	return links
}

// errorPage writes the HTML error layout for a failure category. When the
// path carried no locale prefix, Accept-Language picks the chrome language.
func (h *PageHandler) errorPage(w http.ResponseWriter, r *http.Request, locale string, httpErr httperr.Error) {
	if locale == h.bundle.Fallback() {
		if al := r.Header.Get("Accept-Language"); al != "" {
			locale = h.bundle.Match(al)
		}
	}
	page := render.ErrorPage{
		Site:          h.site,
		Locale:        locale,
		Theme:         h.themeFor(r),
		StatusCode:    httpErr.StatusCode,
		StatusMessage: httpErr.StatusMessage,
		Translator:    h.bundle.Func(locale),
	}

	var buf bytes.Buffer
	if err := h.layout.Error(&buf, page); err != nil {
		slog.Error("error layout failed", slog.String("error", err.Error()))
		http.Error(w, httpErr.StatusMessage, httpErr.StatusCode)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(httpErr.StatusCode)
	_, _ = w.Write(buf.Bytes())
}
