package images

import "testing"

func TestResolveDefaultBase(t *testing.T) {
	got := Resolve("583231", Options{})
	want := Resolved{URL: "https://avatars.githubusercontent.com/u/583231", Format: "webp"}
	if got != want {
		t.Errorf("Resolve = %+v, want %+v", got, want)
	}
}

func TestResolveBaseOverrideWinsEntirely(t *testing.T) {
	got := Resolve("583231", Options{BaseURL: "https://cdn.example.com/img/"})
	if got.URL != "https://cdn.example.com/img/583231" {
		t.Errorf("url = %q, want override base used verbatim", got.URL)
	}
	if got.Format != "webp" {
		t.Errorf("format = %q, want webp", got.Format)
	}
}

func TestResolveJoinsWithSingleSlash(t *testing.T) {
	cases := []struct {
		name string
		base string
		id   string
		want string
	}{
		{"trailing slash base", "https://cdn.example.com/img/", "a.png", "https://cdn.example.com/img/a.png"},
		{"bare base", "https://cdn.example.com/img", "a.png", "https://cdn.example.com/img/a.png"},
		{"leading slash id", "https://cdn.example.com/img", "/a.png", "https://cdn.example.com/img/a.png"},
		{"both slashed", "https://cdn.example.com/img/", "/a.png", "https://cdn.example.com/img/a.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.id, Options{BaseURL: tc.base})
			if got.URL != tc.want {
				t.Errorf("url = %q, want %q", got.URL, tc.want)
			}
		})
	}
}

func TestResolveKeepsIdentifierBytes(t *testing.T) {
	got := Resolve("u/583231?s=200", Options{})
	want := "https://avatars.githubusercontent.com/u/u/583231?s=200"
	if got.URL != want {
		t.Errorf("url = %q, want identifier appended verbatim %q", got.URL, want)
	}
}

func TestResolveEmptyIdentifier(t *testing.T) {
	got := Resolve("", Options{})
	if got.URL != DefaultBaseURL {
		t.Errorf("url = %q, want bare base %q", got.URL, DefaultBaseURL)
	}
}

func TestProviderResolveMatchesPackageAdapter(t *testing.T) {
	p := NewProvider("avatars", "")
	fromProvider := p.Resolve("583231", Options{})
	fromPackage := Resolve("583231", Options{})
	if fromProvider != fromPackage {
		t.Errorf("provider adapter diverged: %+v vs %+v", fromProvider, fromPackage)
	}
}

func TestProviderConfiguredBase(t *testing.T) {
	p := NewProvider("cdn", "https://cdn.example.com/media")
	got := p.Resolve("hero.webp", Options{})
	if got.URL != "https://cdn.example.com/media/hero.webp" {
		t.Errorf("url = %q", got.URL)
	}
}

func TestProviderOverrideBeatsConfiguredBase(t *testing.T) {
	p := NewProvider("cdn", "https://cdn.example.com/media")
	got := p.Resolve("hero.webp", Options{BaseURL: "https://mirror.example.org/"})
	if got.URL != "https://mirror.example.org/hero.webp" {
		t.Errorf("url = %q, want mirror base", got.URL)
	}
}

func TestRegistryDefaults(t *testing.T) {
	reg, err := NewRegistry("avatars", nil)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	def := reg.Default()
	if def == nil {
		t.Fatal("no default provider")
	}
	if def.BaseURL() != DefaultBaseURL {
		t.Errorf("default base = %q, want %q", def.BaseURL(), DefaultBaseURL)
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	reg, err := NewRegistry("avatars", map[string]string{"avatars": ""})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	if _, err := reg.Provider("missing"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestRegistryRejectsUnconfiguredDefault(t *testing.T) {
	_, err := NewRegistry("cdn", map[string]string{"avatars": ""})
	if err == nil {
		t.Fatal("expected error when default provider is not configured")
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	reg, err := NewRegistry("b", map[string]string{
		"b": "https://b.example.com/",
		"a": "https://a.example.com/",
		"c": "https://c.example.com/",
	})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	names := reg.Names()
	want := []string{"a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}
