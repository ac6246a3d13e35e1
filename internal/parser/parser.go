// Package parser splits Markdown documents into YAML front matter and body.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Result holds the output of parsing a Markdown document.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
}

// HasFrontmatter reports whether the document carried a front matter block.
func (r *Result) HasFrontmatter() bool {
	return r.Frontmatter != nil
}

// Parse separates YAML front matter (between leading --- delimiters) from
// the Markdown body. A document without a front matter block parses as body
// only; a block that is present but not valid YAML is an error, so authors
// see the typo instead of a misleading missing-field diagnostic.
func Parse(data []byte) (*Result, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return &Result{Body: string(data)}, nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter. A lone --- line is a horizontal rule, not
		// front matter, so the whole document is body.
		return &Result{Body: string(data)}, nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, fmt.Errorf("parser: invalid front matter: %w", err)
	}
	if fm == nil {
		// Empty block between delimiters still counts as front matter.
		fm = map[string]interface{}{}
	}

	return &Result{Frontmatter: fm, Body: body}, nil
}
