package render

import (
	"fmt"
	"html"

	"github.com/starford/ansuz/internal/images"
)

// Fixed names documents use to reference the built-in components.
const (
	ComponentLink  = "app-link"
	ComponentImage = "app-image"
)

// RegisterBuiltins binds the two built-in components to their fixed names.
// It runs once during bootstrap, before the registry reaches the renderer.
func RegisterBuiltins(reg *Registry, imgs *images.Registry) {
	reg.Register(ComponentLink, linkComponent())
	reg.Register(ComponentImage, imageComponent(imgs))
}

// linkComponent renders an internal navigation link. Attributes: "to" (the
// target route) and optional "title". The inner content is the link text;
// when empty the target route doubles as the text.
func linkComponent() ComponentFunc {
	return func(attrs map[string]string, inner string) (string, error) {
		to := attrs["to"]
		if to == "" {
			return "", fmt.Errorf("render: %s: missing \"to\" attribute", ComponentLink)
		}
		text := inner
		if text == "" {
			text = to
		}
		title := ""
		if v := attrs["title"]; v != "" {
			title = fmt.Sprintf(" title=%q", html.EscapeString(v))
		}
		return fmt.Sprintf(`<a class="app-link" href="%s"%s>%s</a>`,
			html.EscapeString(to), title, html.EscapeString(text)), nil
	}
}

// imageComponent renders an image resolved through the provider registry.
// Attributes: "src" (the opaque identifier), optional "alt", optional
// "provider" (a configured provider name), and optional "base" (a base URL
// override that wins over the provider default).
func imageComponent(imgs *images.Registry) ComponentFunc {
	return func(attrs map[string]string, inner string) (string, error) {
		src := attrs["src"]
		if src == "" {
			return "", fmt.Errorf("render: %s: missing \"src\" attribute", ComponentImage)
		}

		provider := imgs.Default()
		if name := attrs["provider"]; name != "" {
			p, err := imgs.Provider(name)
			if err != nil {
				return "", fmt.Errorf("render: %s: %w", ComponentImage, err)
			}
			provider = p
		}

		resolved := provider.Resolve(src, images.Options{BaseURL: attrs["base"]})
		return fmt.Sprintf(`<img class="app-image" src="%s" alt="%s" loading="lazy" data-format="%s">`,
			html.EscapeString(resolved.URL), html.EscapeString(attrs["alt"]), resolved.Format), nil
	}
}
