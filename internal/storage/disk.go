package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pdfvault/internal/logging"
)

// diskStorage stores blobs as files under a root directory,
// with storage paths mapping directly to relative file paths.
type diskStorage struct {
	root   string
	logger *slog.Logger
}

// DiskStorage is a BlobStore with an explicit initialization step.
type DiskStorage interface {
	BlobStore
	// Init creates the root directory.
	Init() error
	// Root returns the absolute root directory.
	Root() string
}

// NewDisk creates a filesystem blob store rooted at root.
// The root is resolved to an absolute path; directories are created by Init.
func NewDisk(root string, logger *slog.Logger) (DiskStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("blob root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve blob root: %w", err)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &diskStorage{root: abs, logger: logger.With("component", "storage", "driver", "disk")}, nil
}

func (d *diskStorage) Init() error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("%w: create root: %w", ErrWrite, err)
	}
	d.logger.Info("blob root ready", "root", d.root)
	return nil
}

func (d *diskStorage) Root() string { return d.root }

// Put writes to a temp file in the target directory and renames it into place,
// so a partially written blob is never visible under its final path.
func (d *diskStorage) Put(ctx context.Context, r io.Reader, suggestedName string) (PutResult, error) {
	if r == nil {
		return PutResult{}, fmt.Errorf("%w: nil reader", ErrWrite)
	}
	key := NewKey(suggestedName)
	path, err := d.fullPath(key)
	if err != nil {
		return PutResult{}, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return PutResult{}, fmt.Errorf("%w: create directory: %w", ErrWrite, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return PutResult{}, fmt.Errorf("%w: create temp file: %w", ErrWrite, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	n, err := io.Copy(tmp, contextReader{ctx: ctx, r: r})
	if err != nil {
		cleanup()
		return PutResult{}, fmt.Errorf("%w: write temp file: %w", ErrWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return PutResult{}, fmt.Errorf("%w: sync temp file: %w", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return PutResult{}, fmt.Errorf("%w: close temp file: %w", ErrWrite, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return PutResult{}, fmt.Errorf("%w: rename temp file: %w", ErrWrite, err)
	}

	return PutResult{Path: key, Size: n}, nil
}

func (d *diskStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := d.fullPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

func (d *diskStorage) Remove(ctx context.Context, key string) error {
	path, err := d.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove blob: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != d.root && strings.HasPrefix(dir, d.root) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			d.logger.Warn("failed to read directory for cleanup", "dir", dir, "error", err)
			return nil
		}
		if len(entries) == 0 {
			if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
				d.logger.Warn("failed to remove empty directory", "dir", dir, "error", err)
			}
		}
	}

	return nil
}

func (d *diskStorage) fullPath(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	cleaned := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", ErrInvalidKey
	}

	full := filepath.Join(d.root, cleaned)
	if !strings.HasPrefix(full, d.root+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return full, nil
}

// contextReader stops a long copy once the request context is cancelled.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
