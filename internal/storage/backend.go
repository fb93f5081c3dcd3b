// Package storage wraps the primitive directory and file operations used by
// the table index. Every operation works on a layout.Path relative to a base
// directory, hits the filesystem directly, and reports itself to the
// registered observers. Nothing is cached.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/dirstore/internal/layout"
	"github.com/mesh-intelligence/dirstore/pkg/types"
)

// Permissions for created directories and files.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Backend performs filesystem operations rooted at a base directory.
type Backend struct {
	basePath  string
	observers []types.Observer
}

// New creates a Backend rooted at basePath.
func New(basePath string, observers ...types.Observer) *Backend {
	return &Backend{
		basePath:  filepath.Clean(basePath),
		observers: observers,
	}
}

// BasePath returns the root directory.
func (b *Backend) BasePath() string {
	return b.basePath
}

// FileSystemPath joins the base path with p.
func (b *Backend) FileSystemPath(p layout.Path) string {
	return filepath.Join(append([]string{b.basePath}, p...)...)
}

// CreateDirectory creates the directory at p and any missing parents. It
// succeeds if the directory already exists.
func (b *Backend) CreateDirectory(p layout.Path) error {
	full := b.FileSystemPath(p)
	return b.observe(types.VerbCreateDirectory, full, func() error {
		return os.MkdirAll(full, dirPerm)
	})
}

// CreateParentDirectoryOf creates the directory that will hold the object
// at p.
func (b *Backend) CreateParentDirectoryOf(p layout.Path) error {
	return b.CreateDirectory(layout.DirectoryPath(p))
}

// CreateBaseDirectory creates the base directory itself.
func (b *Backend) CreateBaseDirectory() error {
	return b.CreateDirectory(layout.Path{})
}

// WriteFile writes content to p, creating the parent directory first and
// replacing any existing file.
func (b *Backend) WriteFile(p layout.Path, content string) error {
	if err := b.CreateParentDirectoryOf(p); err != nil {
		return err
	}
	full := b.FileSystemPath(p)
	return b.observe(types.VerbWriteFile, full, func() error {
		return os.WriteFile(full, []byte(content), filePerm)
	})
}

// ReadFile returns the content of the file at p. Returns an error wrapping
// types.ErrNotFound if it does not exist.
func (b *Backend) ReadFile(p layout.Path) (string, error) {
	full := b.FileSystemPath(p)
	var content []byte
	err := b.observe(types.VerbReadFile, full, func() error {
		var err error
		content, err = os.ReadFile(full)
		return err
	})
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// ListDirectory returns the names of the children of the directory at p in
// the order the platform returns them. Returns an error wrapping
// types.ErrNotFound if the directory does not exist.
func (b *Backend) ListDirectory(p layout.Path) ([]string, error) {
	full := b.FileSystemPath(p)
	var names []string
	err := b.observe(types.VerbReadDirectory, full, func() error {
		f, err := os.Open(full)
		if err != nil {
			return err
		}
		defer f.Close()
		names, err = f.Readdirnames(-1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// DeleteRecursive removes the file or directory tree at p. Returns an error
// wrapping types.ErrNotFound if nothing exists there.
func (b *Backend) DeleteRecursive(p layout.Path) error {
	full := b.FileSystemPath(p)
	return b.observe(types.VerbDelete, full, func() error {
		if _, err := os.Lstat(full); err != nil {
			return err
		}
		return os.RemoveAll(full)
	})
}

// RemoveEmptyDirectory removes the directory at p only if it has no
// children. It reports whether the directory was removed; a missing or
// non-empty directory is not an error.
func (b *Backend) RemoveEmptyDirectory(p layout.Path) (bool, error) {
	names, err := b.ListDirectory(p)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if len(names) > 0 {
		return false, nil
	}
	full := b.FileSystemPath(p)
	err = b.observe(types.VerbDelete, full, func() error {
		return os.Remove(full)
	})
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// observe runs op between observer callbacks and classifies its error.
func (b *Backend) observe(verb types.Verb, full string, op func() error) error {
	for _, o := range b.observers {
		o.OnOperation(verb, full)
	}
	start := time.Now()
	err := classify(op())
	elapsed := time.Since(start)
	for _, o := range b.observers {
		o.OnOperationDone(verb, full, elapsed, err)
	}
	return err
}

// classify wraps err with the matching sentinel from types, keeping the
// original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", types.ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", types.ErrIOFailure, err)
}
