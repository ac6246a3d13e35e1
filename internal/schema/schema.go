// Package schema validates raw document front matter against the content
// collection schema and normalizes it into a typed Meta value.
//
// The schema distinguishes an absent optional field from a present empty
// value: absent fields stay nil and are never filled with placeholders.
package schema

import "fmt"

// Meta is validated front matter. Optional fields are nil when the source
// document omits them; an empty string or empty list is a present value.
type Meta struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Draft       bool     `json:"draft,omitempty"`
}

// Error reports a single front matter field that violates the schema.
type Error struct {
	Path   string // document path, empty when validating detached front matter
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema: field %q %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("schema: %s: field %q %s", e.Path, e.Field, e.Reason)
}

// Validate checks fm against the collection schema. The first violation is
// returned as an *Error naming the offending field; on success the returned
// Meta carries the normalized values.
func Validate(fm map[string]any) (Meta, error) {
	return ValidateAt("", fm)
}

// ValidateAt is Validate with the document path attached to any failure.
func ValidateAt(path string, fm map[string]any) (Meta, error) {
	var m Meta

	title, err := requireText(path, fm, "title")
	if err != nil {
		return Meta{}, err
	}
	m.Title = title

	if m.Description, err = optionalText(path, fm, "description"); err != nil {
		return Meta{}, err
	}
	if m.Image, err = optionalText(path, fm, "image"); err != nil {
		return Meta{}, err
	}
	if m.Tags, err = optionalTextList(path, fm, "tags"); err != nil {
		return Meta{}, err
	}
	if m.Draft, err = optionalFlag(path, fm, "draft"); err != nil {
		return Meta{}, err
	}

	return m, nil
}

func requireText(path string, fm map[string]any, field string) (string, error) {
	raw, ok := fm[field]
	if !ok || raw == nil {
		return "", &Error{Path: path, Field: field, Reason: "is required"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &Error{Path: path, Field: field, Reason: "must be text"}
	}
	if s == "" {
		return "", &Error{Path: path, Field: field, Reason: "is required"}
	}
	return s, nil
}

func optionalText(path string, fm map[string]any, field string) (*string, error) {
	raw, ok := fm[field]
	if !ok {
		return nil, nil
	}
	if raw == nil {
		return nil, &Error{Path: path, Field: field, Reason: "must be text"}
	}
	s, ok := raw.(string)
	if !ok {
		return nil, &Error{Path: path, Field: field, Reason: "must be text"}
	}
	return &s, nil
}

func optionalTextList(path string, fm map[string]any, field string) ([]string, error) {
	raw, ok := fm[field]
	if !ok {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &Error{Path: path, Field: field, Reason: "must contain only text values"}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, &Error{Path: path, Field: field, Reason: "must be a sequence of text values"}
	}
}

func optionalFlag(path string, fm map[string]any, field string) (bool, error) {
	raw, ok := fm[field]
	if !ok {
		return false, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, &Error{Path: path, Field: field, Reason: "must be true or false"}
	}
	return b, nil
}
