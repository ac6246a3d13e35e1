// Package images resolves opaque image identifiers to absolute provider
// URLs. Every adapter targets the webp encoding; identifiers are joined to
// the provider base verbatim, without escaping or path cleaning.
package images

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultBaseURL is the base of the built-in avatar provider.
const DefaultBaseURL = "https://avatars.githubusercontent.com/u/"

// FormatWebP is the only encoding the adapters emit.
const FormatWebP = "webp"

// Options carries per-call overrides. A non-empty BaseURL replaces the
// provider base entirely; it is never merged with it.
type Options struct {
	BaseURL string
}

// Resolved is an absolute image URL plus its target encoding.
type Resolved struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

// Resolve maps an identifier to a URL under the built-in avatar base,
// honoring an Options base override.
func Resolve(id string, opts Options) Resolved {
	base := DefaultBaseURL
	if opts.BaseURL != "" {
		base = opts.BaseURL
	}
	return Resolved{URL: joinURL(base, id), Format: FormatWebP}
}

// Provider is a named image source with its own configured base URL. It
// resolves identifiers exactly like the package-level adapter, differing
// only in where the default base comes from.
type Provider struct {
	name string
	base string
}

// NewProvider returns a provider rooted at baseURL. An empty baseURL falls
// back to the built-in avatar base.
func NewProvider(name, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{name: name, base: baseURL}
}

func (p *Provider) Name() string { return p.name }

// BaseURL returns the configured base, before any per-call override.
func (p *Provider) BaseURL() string { return p.base }

// Resolve maps an identifier to a URL under the provider base. An Options
// base override wins over the configured base entirely.
func (p *Provider) Resolve(id string, opts Options) Resolved {
	base := p.base
	if opts.BaseURL != "" {
		base = opts.BaseURL
	}
	return Resolved{URL: joinURL(base, id), Format: FormatWebP}
}

// Registry holds the configured named providers. It is assembled once at
// startup and read-only afterwards.
type Registry struct {
	defaultName string
	providers   map[string]*Provider
}

// NewRegistry builds a registry from name to base URL pairs. The default
// provider must be one of the configured names; an empty bases map yields a
// registry with just the built-in avatar provider under defaultName.
func NewRegistry(defaultName string, bases map[string]string) (*Registry, error) {
	if defaultName == "" {
		return nil, fmt.Errorf("images: default provider name is empty")
	}
	providers := make(map[string]*Provider, len(bases))
	for name, base := range bases {
		providers[name] = NewProvider(name, base)
	}
	if len(providers) == 0 {
		providers[defaultName] = NewProvider(defaultName, DefaultBaseURL)
	}
	if _, ok := providers[defaultName]; !ok {
		return nil, fmt.Errorf("images: default provider %q is not configured", defaultName)
	}
	return &Registry{defaultName: defaultName, providers: providers}, nil
}

// Default returns the provider registered under the default name.
func (r *Registry) Default() *Provider {
	return r.providers[r.defaultName]
}

// Provider returns the named provider.
func (r *Registry) Provider(name string) (*Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("images: unknown provider %q", name)
	}
	return p, nil
}

// Names lists the configured provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// joinURL glues base and id with exactly one slash between them. The
// identifier is treated as opaque; url.JoinPath would escape and clean it,
// changing the bytes the provider expects.
func joinURL(base, id string) string {
	if id == "" {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(id, "/")
}
