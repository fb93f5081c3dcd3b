// Package dirstore is the public entry point of the dirstore storage system.
// It exposes the factory for the filesystem backend while keeping the
// implementation internal.
package dirstore

import (
	"log/slog"

	"github.com/mesh-intelligence/dirstore/internal/fsdb"
	"github.com/mesh-intelligence/dirstore/pkg/types"
)

// Version is the dirstore release.
const Version = "v0.1.0"

// Option configures the Store returned by NewStore.
type Option = fsdb.Option

// WithObserver registers an observer notified around every filesystem
// operation.
func WithObserver(o types.Observer) Option {
	return fsdb.WithObserver(o)
}

// WithLogger sets the logger for entry activity.
func WithLogger(l *slog.Logger) Option {
	return fsdb.WithLogger(l)
}

// NewStore creates a new filesystem Store.
// The store is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := dirstore.NewStore()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendFS,
//	    DataDir: "data",
//	})
//	defer store.Detach()
//	people, err := store.GetTable("people")
//	err = people.AddFieldValues("p1", "name", []string{"alice"})
func NewStore(opts ...Option) types.Store {
	return fsdb.NewBackend(opts...)
}
