package types

import "errors"

// Store defines the interface for attaching to a storage root and accessing
// its tables by name. Callers attach, work with tables, and detach when done.
type Store interface {
	// GetTable returns the Table for the given name. Tables need no
	// declaration: a table with no entries simply has no directory yet.
	// Returns ErrInvalidName if name cannot be used as a directory name.
	GetTable(name string) (Table, error)

	// ListTables returns the names of the tables present under the data
	// directory, sorted. Returns an empty slice when there are none.
	ListTables() ([]string, error)

	// Attach connects the Store to the data directory described by config,
	// creating it if it does not exist. Returns ErrAlreadyAttached if called
	// while already attached.
	Attach(config Config) error

	// Detach releases the Store. Idempotent: multiple calls succeed.
	// After Detach, operations on tables return ErrDetached.
	Detach() error
}

// Store lifecycle errors.
var (
	ErrDetached        = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)
