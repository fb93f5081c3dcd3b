package fsdb

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/dirstore/internal/layout"
	"github.com/mesh-intelligence/dirstore/internal/storage"
	"github.com/mesh-intelligence/dirstore/pkg/types"
)

// Table implements types.Table over the forward and reverse index trees of
// one table directory.
//
// Reads treat a missing directory or file as empty. Writes propagate every
// failure; a failure part way through a multi-value call leaves the values
// before it written and the ones after it untouched.
type Table struct {
	backend *Backend
	paths   layout.Table
}

func newTable(b *Backend, name string) *Table {
	return &Table{backend: b, paths: layout.ForTable(name)}
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.paths.Name()
}

// ListAllEntries returns the ids of every entry in the table, sorted.
func (t *Table) ListAllEntries() ([]string, error) {
	st, err := t.backend.storageBackend()
	if err != nil {
		return nil, err
	}
	return listSorted(st, t.paths.EntryContainerPath())
}

// ListEntriesByFieldValue returns, sorted, the ids of the entries whose
// field holds any of values. An entry matching several candidates is
// listed once per match.
func (t *Table) ListEntriesByFieldValue(field string, values []string) ([]string, error) {
	st, err := t.backend.storageBackend()
	if err != nil {
		return nil, err
	}
	matches := []string{}
	if !layout.ValidSegment(field) {
		return matches, nil
	}
	for _, value := range values {
		ids, err := st.ListDirectory(t.paths.ValuePathForField(field, value))
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			return nil, err
		}
		matches = append(matches, ids...)
	}
	slices.Sort(matches)
	return matches, nil
}

// ListFieldsOfEntry returns the sorted names of the entry's fields.
func (t *Table) ListFieldsOfEntry(entryID string) ([]string, error) {
	st, err := t.backend.storageBackend()
	if err != nil {
		return nil, err
	}
	if !layout.ValidSegment(entryID) {
		return []string{}, nil
	}
	return listSorted(st, t.paths.PathForEntry(entryID))
}

// ListValuesForField returns the literal values of the field, sorted. The
// values are read back from the forward leaves; a leaf removed between the
// listing and the read is skipped.
func (t *Table) ListValuesForField(entryID, field string) ([]string, error) {
	st, err := t.backend.storageBackend()
	if err != nil {
		return nil, err
	}
	return t.listValues(st, entryID, field)
}

func (t *Table) listValues(st *storage.Backend, entryID, field string) ([]string, error) {
	values := []string{}
	if !layout.ValidSegment(entryID) || !layout.ValidSegment(field) {
		return values, nil
	}
	fieldPath := t.paths.FieldPathForEntry(entryID, field)
	keys, err := st.ListDirectory(fieldPath)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return values, nil
		}
		return nil, err
	}
	for _, key := range keys {
		value, err := st.ReadFile(fieldPath.Join(key))
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			return nil, err
		}
		values = append(values, value)
	}
	slices.Sort(values)
	return values, nil
}

// GetEntry returns a snapshot of every field of the entry. An absent entry
// yields an Entry with no fields.
func (t *Table) GetEntry(entryID string) (types.Entry, error) {
	st, err := t.backend.storageBackend()
	if err != nil {
		return types.Entry{}, err
	}
	entry := types.Entry{ID: entryID, Fields: map[string][]string{}}
	if !layout.ValidSegment(entryID) {
		return entry, nil
	}
	fields, err := listSorted(st, t.paths.PathForEntry(entryID))
	if err != nil {
		return types.Entry{}, err
	}
	for _, field := range fields {
		values, err := t.listValues(st, entryID, field)
		if err != nil {
			return types.Entry{}, err
		}
		if len(values) > 0 {
			entry.Fields[field] = values
		}
	}
	return entry, nil
}

// AddFieldValues writes, for each value, the reverse leaf and then the
// forward leaf holding the literal value.
func (t *Table) AddFieldValues(entryID, field string, values []string) error {
	st, err := t.backend.storageBackend()
	if err != nil {
		return err
	}
	if err := checkNames(entryID, field); err != nil {
		return err
	}
	t.backend.logger.Debug("adding field values",
		"table", t.Name(), "entry", entryID, "field", field, "count", len(values))

	for _, value := range values {
		if err := st.WriteFile(t.paths.EntryPathForFieldValue(field, value, entryID), ""); err != nil {
			return fmt.Errorf("add %s/%s: %w", entryID, field, err)
		}
		if err := st.WriteFile(t.paths.FieldValuePathForEntry(entryID, field, value), value); err != nil {
			return fmt.Errorf("add %s/%s: %w", entryID, field, err)
		}
	}
	return nil
}

// RemoveFieldValues deletes, for each value, the reverse leaf and then the
// forward leaf. Directories left empty by the removal are pruned so that a
// field without values disappears from the entry.
func (t *Table) RemoveFieldValues(entryID, field string, values []string) error {
	st, err := t.backend.storageBackend()
	if err != nil {
		return err
	}
	if !layout.ValidSegment(entryID) || !layout.ValidSegment(field) {
		return nil
	}
	t.backend.logger.Debug("removing field values",
		"table", t.Name(), "entry", entryID, "field", field, "count", len(values))

	for _, value := range values {
		if err := deleteIfPresent(st, t.paths.EntryPathForFieldValue(field, value, entryID)); err != nil {
			return fmt.Errorf("remove %s/%s: %w", entryID, field, err)
		}
		if _, err := st.RemoveEmptyDirectory(t.paths.ValuePathForField(field, value)); err != nil {
			return fmt.Errorf("remove %s/%s: %w", entryID, field, err)
		}
		if err := deleteIfPresent(st, t.paths.FieldValuePathForEntry(entryID, field, value)); err != nil {
			return fmt.Errorf("remove %s/%s: %w", entryID, field, err)
		}
	}

	if len(values) == 0 {
		return nil
	}
	if _, err := st.RemoveEmptyDirectory(t.paths.PathForField(field)); err != nil {
		return fmt.Errorf("remove %s/%s: %w", entryID, field, err)
	}
	if _, err := st.RemoveEmptyDirectory(t.paths.FieldPathForEntry(entryID, field)); err != nil {
		return fmt.Errorf("remove %s/%s: %w", entryID, field, err)
	}
	return nil
}

// ClearFieldValues reads the current values of the field and removes them.
// The field directory is never deleted directly, which would orphan the
// reverse leaves.
func (t *Table) ClearFieldValues(entryID, field string) error {
	values, err := t.ListValuesForField(entryID, field)
	if err != nil {
		return err
	}
	return t.RemoveFieldValues(entryID, field, values)
}

// SetFieldValues clears the field, then adds values.
func (t *Table) SetFieldValues(entryID, field string, values []string) error {
	if err := checkNames(entryID, field); err != nil {
		return err
	}
	if err := t.ClearFieldValues(entryID, field); err != nil {
		return err
	}
	return t.AddFieldValues(entryID, field, values)
}

// RemoveEntry clears every field of the entry, then deletes the entry
// directory.
func (t *Table) RemoveEntry(entryID string) error {
	st, err := t.backend.storageBackend()
	if err != nil {
		return err
	}
	if !layout.ValidSegment(entryID) {
		return nil
	}
	t.backend.logger.Debug("removing entry", "table", t.Name(), "entry", entryID)

	fields, err := t.ListFieldsOfEntry(entryID)
	if err != nil {
		return err
	}
	for _, field := range fields {
		if err := t.ClearFieldValues(entryID, field); err != nil {
			return err
		}
	}
	if err := deleteIfPresent(st, t.paths.PathForEntry(entryID)); err != nil {
		return fmt.Errorf("remove entry %s: %w", entryID, err)
	}
	return nil
}

// listSorted lists a directory and sorts the names; a missing directory is
// empty.
func listSorted(st *storage.Backend, p layout.Path) ([]string, error) {
	names, err := st.ListDirectory(p)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	slices.Sort(names)
	return names, nil
}

// deleteIfPresent deletes p, treating a missing object as already deleted.
func deleteIfPresent(st *storage.Backend, p layout.Path) error {
	err := st.DeleteRecursive(p)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return err
	}
	return nil
}

func checkNames(entryID, field string) error {
	if !layout.ValidSegment(entryID) {
		return fmt.Errorf("%w: entry %q", types.ErrInvalidName, entryID)
	}
	if !layout.ValidSegment(field) {
		return fmt.Errorf("%w: field %q", types.ErrInvalidName, field)
	}
	return nil
}
