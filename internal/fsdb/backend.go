// Package fsdb implements the filesystem storage backend for dirstore: a
// Store whose tables keep every value in a forward index keyed by entry and
// a reverse index keyed by field value, both plain directory trees.
package fsdb

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/mesh-intelligence/dirstore/internal/layout"
	"github.com/mesh-intelligence/dirstore/internal/storage"
	"github.com/mesh-intelligence/dirstore/pkg/types"
)

// Backend implements the Store interface over a directory tree.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	storage  *storage.Backend
	tables   map[string]*Table

	observers []types.Observer
	logger    *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithObserver registers an observer for every storage operation.
func WithObserver(o types.Observer) Option {
	return func(b *Backend) {
		b.observers = append(b.observers, o)
	}
}

// WithLogger sets the logger used for entry activity. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		b.logger = l
	}
}

// NewBackend creates a new filesystem backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		tables: make(map[string]*Table),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// GetTable returns the Table for the given name.
// Returns ErrDetached if the backend is not attached and ErrInvalidName if
// the name cannot be a directory name.
func (b *Backend) GetTable(name string) (types.Table, error) {
	if !validTableName(name) {
		return nil, fmt.Errorf("%w: table %q", types.ErrInvalidName, name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	table, ok := b.tables[name]
	if !ok {
		table = newTable(b, name)
		b.tables[name] = table
	}
	return table, nil
}

// ListTables returns the sorted names of the table directories under the
// data directory.
func (b *Backend) ListTables() ([]string, error) {
	st, err := b.storageBackend()
	if err != nil {
		return nil, err
	}

	names, err := st.ListDirectory(layout.Path{})
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}

	tables := make([]string, 0, len(names))
	for _, name := range names {
		if validTableName(name) {
			tables = append(tables, name)
		}
	}
	slices.Sort(tables)
	return tables, nil
}

// Attach initializes the backend with the given configuration and creates
// the data directory if needed.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}

	st := storage.New(dataDir, b.observers...)
	if err := st.CreateBaseDirectory(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	b.storage = st
	b.config = config
	b.attached = true
	return nil
}

// Detach releases the backend. After Detach, all operations return
// ErrDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.attached = false
	b.storage = nil
	b.tables = make(map[string]*Table)
	return nil
}

// DataDir returns the data directory of the attached backend, or "" when
// detached.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return ""
	}
	return b.storage.BasePath()
}

// storageBackend returns the storage layer, or ErrDetached.
func (b *Backend) storageBackend() (*storage.Backend, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.storage, nil
}

// validTableName reports whether name can be a table directory. Dot-prefixed
// names are reserved for files the tooling keeps next to the tables.
func validTableName(name string) bool {
	return layout.ValidSegment(name) && !strings.HasPrefix(name, ".")
}
