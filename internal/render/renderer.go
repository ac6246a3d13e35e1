package render

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gparser "github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

var (
	directiveRe = regexp.MustCompile(`^::([a-z][a-z0-9-]*)(?:\{(.*)\})?\s*$`)
	attrRe      = regexp.MustCompile(`([A-Za-z][A-Za-z0-9_-]*)="([^"]*)"`)
)

// Renderer converts Markdown document bodies to HTML. Component directives
// are expanded through the registry before markdown conversion, so component
// output passes through as raw HTML blocks.
//
// A directive occupies its own line:
//
//	::app-image{src="583231" alt="Avatar"}
//
// An optional inner block runs until the next line containing only "::";
// a directive with no closing marker before end of input is self-closing.
type Renderer struct {
	registry *Registry
	md       goldmark.Markdown
}

// NewRenderer returns a Renderer expanding directives via reg.
func NewRenderer(reg *Registry) *Renderer {
	return &Renderer{
		registry: reg,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(gparser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(ghtml.WithUnsafe()),
		),
	}
}

// Render expands component directives and converts the result to HTML.
func (r *Renderer) Render(body string) (template.HTML, error) {
	expanded := r.expandDirectives(body)
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(expanded), &buf); err != nil {
		return "", fmt.Errorf("render: convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// expandDirectives replaces every component directive with its rendered
// HTML. A failing or unknown component degrades to an HTML comment so the
// rest of the page still renders; the comment keeps the problem visible to
// the author.
func (r *Renderer) expandDirectives(body string) string {
	lines := strings.Split(body, "\n")
	var out []string

	for i := 0; i < len(lines); i++ {
		m := directiveRe.FindStringSubmatch(lines[i])
		if m == nil {
			out = append(out, lines[i])
			continue
		}
		name, attrs := m[1], parseAttrs(m[2])

		inner := ""
		if end := findClosing(lines, i+1); end >= 0 {
			inner = strings.TrimSpace(strings.Join(lines[i+1:end], "\n"))
			i = end
		}

		out = append(out, r.renderComponent(name, attrs, inner))
	}

	return strings.Join(out, "\n")
}

// findClosing returns the index of the next line containing only "::", or -1.
func findClosing(lines []string, from int) int {
	for j := from; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "::" {
			return j
		}
	}
	return -1
}

func (r *Renderer) renderComponent(name string, attrs map[string]string, inner string) string {
	fn, ok := r.registry.Lookup(name)
	if !ok {
		return comment(fmt.Sprintf("unknown component %q", name))
	}
	html, err := fn(attrs, inner)
	if err != nil {
		return comment(err.Error())
	}
	return html
}

// comment wraps msg in an HTML comment, stripping double hyphens which would
// terminate the comment early.
func comment(msg string) string {
	msg = strings.ReplaceAll(msg, "--", "-")
	return "<!-- " + msg + " -->"
}

func parseAttrs(raw string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(raw, -1) {
		attrs[m[1]] = m[2]
	}
	return attrs
}
