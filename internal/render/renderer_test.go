package render

import (
	"bytes"
	"strings"
	"testing"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	reg := NewRegistry()
	RegisterBuiltins(reg, testImages(t))
	return NewRenderer(reg)
}

func TestRenderPlainMarkdown(t *testing.T) {
	r := testRenderer(t)
	out, err := r.Render("# Heading\n\nSome **bold** text.\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<h1 id=\"heading\">Heading</h1>") {
		t.Errorf("missing heading: %s", html)
	}
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("missing bold: %s", html)
	}
}

func TestRenderGFMTable(t *testing.T) {
	r := testRenderer(t)
	out, err := r.Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "<table>") {
		t.Errorf("GFM table not rendered: %s", out)
	}
}

func TestRenderSelfClosingDirective(t *testing.T) {
	r := testRenderer(t)
	out, err := r.Render("intro\n\n::app-image{src=\"583231\" alt=\"Octo\"}\n\noutro\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, `src="https://avatars.githubusercontent.com/u/583231"`) {
		t.Errorf("image directive not expanded: %s", html)
	}
	if !strings.Contains(html, `alt="Octo"`) {
		t.Errorf("alt attribute lost: %s", html)
	}
	if strings.Contains(html, "::app-image") {
		t.Errorf("raw directive leaked into output: %s", html)
	}
}

func TestRenderDirectiveWithInnerBlock(t *testing.T) {
	r := testRenderer(t)
	body := "::app-link{to=\"/guide\"}\nRead the guide\n::\n"
	out, err := r.Render(body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, `href="/guide"`) {
		t.Errorf("link not expanded: %s", html)
	}
	if !strings.Contains(html, "Read the guide") {
		t.Errorf("inner text lost: %s", html)
	}
}

func TestRenderUnknownComponentDegradesToComment(t *testing.T) {
	r := testRenderer(t)
	out, err := r.Render("::spinny-widget{speed=\"11\"}\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "unknown component") {
		t.Errorf("expected explanatory comment, got %s", out)
	}
}

func TestRenderFailingComponentDegradesToComment(t *testing.T) {
	r := testRenderer(t)
	out, err := r.Render("::app-image{alt=\"no src\"}\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "<!--") {
		t.Errorf("expected comment for failing component, got %s", out)
	}
	if strings.Contains(string(out), "<img") {
		t.Errorf("failing component still produced an image: %s", out)
	}
}

func TestRenderDirectiveTextIsNotEscapedAway(t *testing.T) {
	// A paragraph mentioning :: mid-line must survive untouched.
	r := testRenderer(t)
	out, err := r.Render("Use the C++ :: scope operator.\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "scope operator") {
		t.Errorf("ordinary text mangled: %s", out)
	}
}

func TestPageTemplate(t *testing.T) {
	pr, err := NewPageRenderer()
	if err != nil {
		t.Fatalf("NewPageRenderer: %v", err)
	}

	var buf bytes.Buffer
	desc := "Intro description"
	err = pr.Page(&buf, Page{
		Site:        Site{Name: "Ansuz Docs"},
		Title:       "Intro",
		Description: desc,
		Image:       "https://avatars.githubusercontent.com/u/583231",
		Route:       "/guide/intro",
		Locale:      "en",
		Theme:       "dark",
		Tags:        []string{"guide"},
		Body:        "<p>hello</p>",
		Nav:         []NavLink{{Route: "/guide", Title: "Guide"}},
		Translator:  func(key string) string { return "tr:" + key },
	})
	if err != nil {
		t.Fatalf("Page: %v", err)
	}

	html := buf.String()
	for _, want := range []string{
		`<html lang="en" data-theme="dark">`,
		"<title>Intro · Ansuz Docs</title>",
		`<meta name="description" content="Intro description">`,
		`<meta property="og:image" content="https://avatars.githubusercontent.com/u/583231">`,
		`data-route="/guide/intro"`,
		"<p>hello</p>",
		`<a href="/guide">Guide</a>`,
		"tr:footer.tagline",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page output missing %q:\n%s", want, html)
		}
	}
}

func TestPageTemplateOmitsAbsentMeta(t *testing.T) {
	pr, err := NewPageRenderer()
	if err != nil {
		t.Fatalf("NewPageRenderer: %v", err)
	}

	var buf bytes.Buffer
	err = pr.Page(&buf, Page{
		Site:   Site{Name: "Ansuz Docs"},
		Title:  "Bare",
		Route:  "/bare",
		Locale: "en",
		Theme:  "system",
		Body:   "<p>x</p>",
	})
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	html := buf.String()
	if strings.Contains(html, `name="description"`) {
		t.Error("absent description produced a meta tag")
	}
	if strings.Contains(html, "og:image") {
		t.Error("absent image produced a meta tag")
	}
}

func TestErrorTemplate(t *testing.T) {
	pr, err := NewPageRenderer()
	if err != nil {
		t.Fatalf("NewPageRenderer: %v", err)
	}

	var buf bytes.Buffer
	err = pr.Error(&buf, ErrorPage{
		Site:          Site{Name: "Ansuz Docs"},
		Locale:        "en",
		Theme:         "system",
		StatusCode:    404,
		StatusMessage: "Not found",
	})
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, "<h1>404</h1>") {
		t.Errorf("missing status code: %s", html)
	}
	if !strings.Contains(html, "Not found") {
		t.Errorf("missing status message: %s", html)
	}
}
