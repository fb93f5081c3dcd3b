// Package watch reports changes to a table's entries as they happen on disk,
// whichever process makes them. It watches the forward index only: every
// mutation of the dual index touches it.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/mesh-intelligence/dirstore/internal/layout"
	"github.com/mesh-intelligence/dirstore/internal/storage"
)

// Kind classifies an Event.
type Kind string

// Event kinds.
const (
	EntryCreated Kind = "entry created"
	EntryRemoved Kind = "entry removed"
	FieldChanged Kind = "field changed"
)

// Event describes one change to an entry.
type Event struct {
	Kind  Kind   `json:"kind"`
	Table string `json:"table"`
	Entry string `json:"entry"`
	Field string `json:"field,omitempty"`
}

// Watcher follows the forward index of one table.
type Watcher struct {
	fsw        *fsnotify.Watcher
	table      string
	entriesDir string
	logger     *slog.Logger
}

// New starts watching table under dataDir. The entries directory is created
// if the table has none yet.
func New(dataDir, table string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	st := storage.New(dataDir)
	entries := layout.ForTable(table).EntryContainerPath()
	if err := st.CreateDirectory(entries); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:        fsw,
		table:      table,
		entriesDir: st.FileSystemPath(entries),
		logger:     logger,
	}
	if err := w.addTree(w.entriesDir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers events to fn until ctx is done. It closes the watcher before
// returning.
func (w *Watcher) Run(ctx context.Context, fn func(Event)) error {
	defer func() { _ = w.fsw.Close() }()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				// New entry and field directories must be watched too.
				if err := w.addTree(ev.Name); err != nil {
					w.logger.WarnContext(ctx, "Failed to watch new directory", "path", ev.Name, "err", err)
				}
			}
			if e, ok := w.classify(ev); ok {
				fn(e)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "Error watching table", "table", w.table, "err", err)
		}
	}
}

// Close stops the watcher without running it.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// addTree watches root and every directory below it that is at most two
// levels under the entries directory. Files are ignored.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The directory may be gone already.
			if path == root {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if depth(w.entriesDir, path) > 2 {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// classify maps a filesystem event below the entries directory to an Event.
func (w *Watcher) classify(ev fsnotify.Event) (Event, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return Event{}, false
	}
	parts := segments(w.entriesDir, ev.Name)
	switch len(parts) {
	case 1:
		kind := EntryCreated
		if !ev.Has(fsnotify.Create) {
			kind = EntryRemoved
		}
		return Event{Kind: kind, Table: w.table, Entry: parts[0]}, true
	case 2, 3:
		return Event{Kind: FieldChanged, Table: w.table, Entry: parts[0], Field: parts[1]}, true
	default:
		return Event{}, false
	}
}

// segments returns the path segments of path relative to root, or nil when
// path is not below root.
func segments(root, path string) []string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return strings.Split(rel, string(filepath.Separator))
}

func depth(root, path string) int {
	return len(segments(root, path))
}
