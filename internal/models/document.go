// Package models defines the domain types for Ansuz.
package models

import "time"

// Document represents a validated Markdown file in the content directory.
type Document struct {
	Path        string    `json:"path"`
	Route       string    `json:"route"`
	Locale      string    `json:"locale"`
	Content     []byte    `json:"-"`
	Body        string    `json:"body"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Image       *string   `json:"image,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Draft       bool      `json:"draft,omitempty"`
	Checksum    string    `json:"checksum"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DocumentMetadata is a lightweight representation returned by list operations.
type DocumentMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NavNode is one entry in the navigation tree derived from document routes.
type NavNode struct {
	Route    string     `json:"route"`
	Title    string     `json:"title"`
	Locale   string     `json:"locale,omitempty"`
	Children []*NavNode `json:"children,omitempty"`
}
