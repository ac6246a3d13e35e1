// Package render turns Markdown document bodies into HTML pages, expanding
// component directives through an explicit registry.
package render

import "sort"

// ComponentFunc renders one component instance. attrs holds the directive
// attributes; inner is the raw content between the opening directive and its
// closing marker (empty for self-closing directives).
type ComponentFunc func(attrs map[string]string, inner string) (string, error)

// Registry maps component names to render functions. It is populated during
// bootstrap, handed to the renderer once, and read-only afterwards, so
// lookups need no locking.
type Registry struct {
	components map[string]ComponentFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]ComponentFunc)}
}

// Register binds fn to name. Registering a name that already exists replaces
// the previous binding; the last write wins.
func (r *Registry) Register(name string, fn ComponentFunc) {
	r.components[name] = fn
}

// Lookup returns the function bound to name.
func (r *Registry) Lookup(name string) (ComponentFunc, bool) {
	fn, ok := r.components[name]
	return fn, ok
}

// Names lists the registered component names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	return len(r.components)
}
