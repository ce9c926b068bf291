package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Package storage contains blob storage abstractions and the disk, memory and
// S3-compatible implementations. Stores never interpret the bytes they hold.

// Blob store errors. Implementations wrap the underlying cause so both the
// sentinel and the cause are reachable with errors.Is.
var (
	// ErrNotFound indicates the storage path does not exist.
	ErrNotFound = errors.New("storage: blob not found")

	// ErrWrite indicates the blob could not be persisted (disk full, permission denied, backend unreachable).
	ErrWrite = errors.New("storage: write failed")

	// ErrInvalidKey indicates an empty storage path or a path escaping the store root.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// keyPrefix groups every document blob under one namespace.
const keyPrefix = "documents"

// PutResult describes a blob that has been fully written.
type PutResult struct {
	Path string
	Size int64
}

// BlobStore persists raw file bytes under generated names.
// Implementations are safe for concurrent use by multiple goroutines.
type BlobStore interface {
	// Put streams r into a new blob whose name is derived from suggestedName plus a
	// collision-avoidance token, and returns the resolved path and the bytes written.
	Put(ctx context.Context, r io.Reader, suggestedName string) (PutResult, error)
	// Open returns a stream over the blob at path. The caller must close it.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Remove deletes the blob at path. A missing blob is not an error.
	Remove(ctx context.Context, path string) error
}

// NewKey builds a storage path of the form documents/<unix-millis>-<random>-<name>.
// Identical suggested names uploaded concurrently never produce the same key.
func NewKey(suggestedName string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	name := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), token, SanitizeFilename(suggestedName))
	return keyPrefix + "/" + name
}

// SanitizeFilename reduces a client supplied name to a safe single path segment.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	name = strings.ToValidUTF8(replacer.Replace(name), "_")
	if name == "" || name == "." || name == ".." || name == "_" {
		return "document.pdf"
	}
	if len(name) > maxNameBytes {
		ext := filepath.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		name = truncateUTF8(name, maxNameBytes-len(ext)) + ext
	}
	return name
}

// maxNameBytes bounds the sanitized name inside a key.
const maxNameBytes = 128

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
