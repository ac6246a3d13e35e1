// Package storage defines the content directory file-system abstraction.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/starford/ansuz/internal/models"
)

// ErrInvalidPath marks paths that are absolute or escape the content root.
var ErrInvalidPath = errors.New("storage: invalid path")

// Provider is the interface for content file operations. Paths are always
// relative to the content root.
type Provider interface {
	// List returns metadata for every source file under dir that matches
	// the configured source glob.
	List(dir string) ([]models.DocumentMetadata, error)
	// Matches reports whether a root-relative path belongs to the source set.
	Matches(path string) bool
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}

// Checksum returns the hex-encoded SHA-256 digest of data. The same digest
// is used for index reconciliation and HTTP ETags.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
