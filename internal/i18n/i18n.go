// Package i18n loads per-locale YAML message catalogs and resolves keys
// with fallback to the default locale.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Bundle holds the message catalogs for every enabled locale. It is loaded
// once at startup and read-only afterwards.
type Bundle struct {
	fallback string
	locales  []string
	tags     []language.Tag
	matcher  language.Matcher
	catalogs map[string]map[string]string
}

// Load reads <code>.yaml catalogs for each enabled locale from dir. A
// missing catalog file yields an empty catalog; malformed YAML is an error.
// Nested mappings flatten to dotted keys ("nav.home").
func Load(dir, fallback string, locales []string) (*Bundle, error) {
	if fallback == "" {
		return nil, fmt.Errorf("i18n: default locale is empty")
	}
	if len(locales) == 0 {
		locales = []string{fallback}
	}

	b := &Bundle{
		fallback: fallback,
		catalogs: make(map[string]map[string]string, len(locales)),
	}

	for _, code := range locales {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("i18n: invalid locale %q: %w", code, err)
		}
		b.locales = append(b.locales, code)
		b.tags = append(b.tags, tag)

		catalog, err := loadCatalog(filepath.Join(dir, code+".yaml"))
		if err != nil {
			return nil, err
		}
		b.catalogs[code] = catalog
	}

	if !b.Has(fallback) {
		return nil, fmt.Errorf("i18n: default locale %q is not in the enabled set", fallback)
	}

	// The fallback tag must come first: language.NewMatcher treats the
	// first tag as the match of last resort.
	ordered := make([]language.Tag, 0, len(b.tags))
	for i, code := range b.locales {
		if code == fallback {
			ordered = append([]language.Tag{b.tags[i]}, ordered...)
		} else {
			ordered = append(ordered, b.tags[i])
		}
	}
	b.matcher = language.NewMatcher(ordered)

	return b, nil
}

func loadCatalog(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("i18n: read catalog %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("i18n: parse catalog %s: %w", path, err)
	}

	out := make(map[string]string)
	flatten("", raw, out)
	return out, nil
}

// flatten turns nested mappings into dotted keys. Scalar values are
// stringified; sequences are skipped.
func flatten(prefix string, raw map[string]any, out map[string]string) {
	for k, v := range raw {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		case nil:
			out[key] = ""
		case bool, int, int64, float64:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Fallback returns the default locale code.
func (b *Bundle) Fallback() string { return b.fallback }

// Locales returns the enabled locale codes in sorted order.
func (b *Bundle) Locales() []string {
	out := make([]string, len(b.locales))
	copy(out, b.locales)
	sort.Strings(out)
	return out
}

// Has reports whether code is an enabled locale.
func (b *Bundle) Has(code string) bool {
	_, ok := b.catalogs[code]
	return ok
}

// T resolves key in locale, falling back to the default locale, then to the
// key itself so missing translations stay visible instead of blank.
func (b *Bundle) T(locale, key string) string {
	if catalog, ok := b.catalogs[locale]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if locale != b.fallback {
		if msg, ok := b.catalogs[b.fallback][key]; ok {
			return msg
		}
	}
	return key
}

// Func returns T bound to one locale, for handing to templates.
func (b *Bundle) Func(locale string) func(string) string {
	return func(key string) string { return b.T(locale, key) }
}

// Match returns the enabled locale best matching an Accept-Language header.
// An empty or unparsable header matches the default locale.
func (b *Bundle) Match(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return b.fallback
	}
	_, idx, conf := language.MatchStrings(b.matcher, acceptLanguage)
	if conf == language.No {
		return b.fallback
	}
	// idx refers to the matcher's tag order: fallback first, then the
	// remaining locales in enabled order.
	ordered := make([]string, 0, len(b.locales))
	ordered = append(ordered, b.fallback)
	for _, code := range b.locales {
		if code != b.fallback {
			ordered = append(ordered, code)
		}
	}
	if idx < 0 || idx >= len(ordered) {
		return b.fallback
	}
	return ordered[idx]
}
