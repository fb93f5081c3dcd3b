package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/dirstore/pkg/types"
)

// Format names a snapshot file format.
type Format string

// Supported formats.
const (
	FormatJSONL  Format = "jsonl"
	FormatSQLite Format = "sqlite"
)

// ErrUnknownFormat is returned for a format name that is not supported.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case FormatJSONL, FormatSQLite:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// WriteFile snapshots the named tables of store (all when names is empty)
// into path. The file is replaced atomically. Returns the number of records
// written.
func WriteFile(ctx context.Context, store types.Store, path string, format Format, names []string) (int, error) {
	records, err := Snapshot(ctx, store, names)
	if err != nil {
		return 0, err
	}
	switch format {
	case FormatJSONL:
		err = writeJSONL(path, records)
	case FormatSQLite:
		err = writeSQLite(ctx, path, records)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// replaceAtomically creates a temp file next to path, lets fill write it,
// syncs it, and renames it over path. The temp file is removed on failure.
func replaceAtomically(path string, fill func(f *os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := fill(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
