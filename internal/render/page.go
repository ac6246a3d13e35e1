package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Site carries the site-level metadata shared by every page.
type Site struct {
	Name        string
	Description string
	BaseURL     string
}

// NavLink is one entry of the page navigation.
type NavLink struct {
	Route string
	Title string
}

// Page is the data the document layout consumes.
type Page struct {
	Site        Site
	Title       string
	Description string
	Image       string // resolved image URL, empty when the document has none
	Route       string
	Locale      string
	Theme       string
	Tags        []string
	Body        template.HTML
	Nav         []NavLink
	Translator  func(string) string
}

// T resolves a message key through the bound translator; without one the
// key itself is returned.
func (p Page) T(key string) string {
	if p.Translator == nil {
		return key
	}
	return p.Translator(key)
}

// ErrorPage is the data the error layout consumes.
type ErrorPage struct {
	Site          Site
	Locale        string
	Theme         string
	StatusCode    int
	StatusMessage string
	Translator    func(string) string
}

func (p ErrorPage) T(key string) string {
	if p.Translator == nil {
		return key
	}
	return p.Translator(key)
}

// PageRenderer executes the embedded HTML layouts.
type PageRenderer struct {
	tpl *template.Template
}

// NewPageRenderer parses the embedded templates.
func NewPageRenderer() (*PageRenderer, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}
	return &PageRenderer{tpl: tpl}, nil
}

// Page writes the document layout for p.
func (pr *PageRenderer) Page(w io.Writer, p Page) error {
	if err := pr.tpl.ExecuteTemplate(w, "page.tmpl", p); err != nil {
		return fmt.Errorf("render: execute page template: %w", err)
	}
	return nil
}

// Error writes the error layout for p.
func (pr *PageRenderer) Error(w io.Writer, p ErrorPage) error {
	if err := pr.tpl.ExecuteTemplate(w, "error.tmpl", p); err != nil {
		return fmt.Errorf("render: execute error template: %w", err)
	}
	return nil
}
