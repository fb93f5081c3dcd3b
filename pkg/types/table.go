package types

import "errors"

// Table exposes value-oriented CRUD and lookup over one table's dual index.
//
// Every (entry, field, value) triple is stored twice: once under the entry
// (the forward index) and once under the field value (the reverse index).
// Reads that hit a missing structure return an empty, non-nil slice rather
// than an error. All slices are sorted lexicographically.
type Table interface {
	// Name returns the table name.
	Name() string

	// ListAllEntries returns the ids of every entry in the table.
	ListAllEntries() ([]string, error)

	// ListEntriesByFieldValue returns the ids of entries whose field holds
	// any of the candidate values. Matches are accumulated per candidate and
	// not deduplicated, so an entry holding two candidates appears twice.
	ListEntriesByFieldValue(field string, values []string) ([]string, error)

	// ListFieldsOfEntry returns the names of the fields that hold at least
	// one value for the entry.
	ListFieldsOfEntry(entryID string) ([]string, error)

	// ListValuesForField returns the literal values stored for the field.
	ListValuesForField(entryID, field string) ([]string, error)

	// GetEntry returns every field of the entry with its values.
	GetEntry(entryID string) (Entry, error)

	// AddFieldValues adds values to the field without removing existing
	// ones. Adding a value that is already present has no visible effect.
	AddFieldValues(entryID, field string, values []string) error

	// RemoveFieldValues removes values from the field. Values that are not
	// present are ignored.
	RemoveFieldValues(entryID, field string, values []string) error

	// ClearFieldValues removes every value of the field.
	ClearFieldValues(entryID, field string) error

	// SetFieldValues replaces the values of the field. It clears, then adds;
	// a failure between the two steps leaves the field partially updated.
	SetFieldValues(entryID, field string, values []string) error

	// RemoveEntry removes every value of every field of the entry, then the
	// entry itself. Removing an absent entry is a no-op.
	RemoveEntry(entryID string) error
}

// Entry is a snapshot of one entry's fields and values.
type Entry struct {
	ID     string              `json:"id"`
	Fields map[string][]string `json:"fields"`
}

// Storage errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrIOFailure   = errors.New("i/o failure")
	ErrInvalidName = errors.New("invalid name")
)
