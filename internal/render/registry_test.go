package render

import (
	"testing"

	"github.com/starford/ansuz/internal/images"
)

func testImages(t *testing.T) *images.Registry {
	t.Helper()
	reg, err := images.NewRegistry("avatars", map[string]string{
		"avatars": "",
		"cdn":     "https://cdn.example.com/media/",
	})
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	reg.Register("badge", func(attrs map[string]string, inner string) (string, error) {
		return "<span>" + inner + "</span>", nil
	})

	fn, ok := reg.Lookup("badge")
	if !ok {
		t.Fatal("registered component not found")
	}
	got, err := fn(nil, "hi")
	if err != nil {
		t.Fatal(err)
	}
	if got != "<span>hi</span>" {
		t.Errorf("component output = %q", got)
	}
}

func TestLookupUnknown(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.Lookup("ghost"); ok {
		t.Error("lookup of unregistered name succeeded")
	}
}

func TestRegisterLastWriteWins(t *testing.T) {
	reg := NewRegistry()
	reg.Register("dup", func(map[string]string, string) (string, error) { return "first", nil })
	reg.Register("dup", func(map[string]string, string) (string, error) { return "second", nil })

	if reg.Len() != 1 {
		t.Fatalf("len = %d, want 1", reg.Len())
	}
	fn, _ := reg.Lookup("dup")
	got, _ := fn(nil, "")
	if got != "second" {
		t.Errorf("output = %q, want the later registration", got)
	}
}

func TestRegisterBuiltinsFixedNames(t *testing.T) {
	reg := NewRegistry()
	RegisterBuiltins(reg, testImages(t))

	for _, name := range []string{ComponentLink, ComponentImage} {
		if _, ok := reg.Lookup(name); !ok {
			t.Errorf("builtin %q not registered", name)
		}
	}
	names := reg.Names()
	if len(names) != 2 || names[0] != "app-image" || names[1] != "app-link" {
		t.Errorf("names = %v", names)
	}
}

func TestLinkComponent(t *testing.T) {
	reg := NewRegistry()
	RegisterBuiltins(reg, testImages(t))
	fn, _ := reg.Lookup(ComponentLink)

	got, err := fn(map[string]string{"to": "/guide/intro"}, "Read the guide")
	if err != nil {
		t.Fatal(err)
	}
	want := `<a class="app-link" href="/guide/intro">Read the guide</a>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLinkComponentFallsBackToRouteText(t *testing.T) {
	reg := NewRegistry()
	RegisterBuiltins(reg, testImages(t))
	fn, _ := reg.Lookup(ComponentLink)

	got, err := fn(map[string]string{"to": "/about"}, "")
	if err != nil {
		t.Fatal(err)
	}
	want := `<a class="app-link" href="/about">/about</a>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLinkComponentRequiresTarget(t *testing.T) {
	reg := NewRegistry()
	RegisterBuiltins(reg, testImages(t))
	fn, _ := reg.Lookup(ComponentLink)

	if _, err := fn(map[string]string{}, "text"); err == nil {
		t.Error("expected error for missing to attribute")
	}
}

func TestImageComponentDefaultProvider(t *testing.T) {
	reg := NewRegistry()
	RegisterBuiltins(reg, testImages(t))
	fn, _ := reg.Lookup(ComponentImage)

	got, err := fn(map[string]string{"src": "583231", "alt": "Avatar"}, "")
	if err != nil {
		t.Fatal(err)
	}
	want := `<img class="app-image" src="https://avatars.githubusercontent.com/u/583231" alt="Avatar" loading="lazy" data-format="webp">`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestImageComponentNamedProviderAndOverride(t *testing.T) {
	reg := NewRegistry()
	RegisterBuiltins(reg, testImages(t))
	fn, _ := reg.Lookup(ComponentImage)

	got, err := fn(map[string]string{"src": "hero.webp", "provider": "cdn"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if got != `<img class="app-image" src="https://cdn.example.com/media/hero.webp" alt="" loading="lazy" data-format="webp">` {
		t.Errorf("provider attr not honored: %q", got)
	}

	got, err = fn(map[string]string{"src": "hero.webp", "provider": "cdn", "base": "https://mirror.example.org"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if got != `<img class="app-image" src="https://mirror.example.org/hero.webp" alt="" loading="lazy" data-format="webp">` {
		t.Errorf("base override not honored: %q", got)
	}
}

func TestImageComponentUnknownProvider(t *testing.T) {
	reg := NewRegistry()
	RegisterBuiltins(reg, testImages(t))
	fn, _ := reg.Lookup(ComponentImage)

	if _, err := fn(map[string]string{"src": "x", "provider": "nope"}, ""); err == nil {
		t.Error("expected error for unknown provider")
	}
}
