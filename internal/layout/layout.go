// Package layout derives the directory paths of a table's dual index.
//
// A table T stores each (entry, field, value) triple twice:
//
//	T/entries/{entry}/{field}/{valueKey}   forward leaf, content is the value
//	T/fields/{field}/{valueKey}/{entry}    reverse leaf, empty
//
// Paths are slices of segments relative to the storage root. Nothing in this
// package touches the filesystem.
package layout

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"slices"
	"strings"
)

// Container directory names under a table.
const (
	EntriesDir = "entries"
	FieldsDir  = "fields"
)

// Path is a sequence of path segments relative to the storage root.
type Path []string

// Join returns a new Path with segs appended. p is not modified.
func (p Path) Join(segs ...string) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	return append(out, segs...)
}

// Parent returns all but the last segment. The parent of an empty Path is
// empty.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return slices.Clone(p[:len(p)-1])
}

// Base returns the last segment, or "" for an empty Path.
func (p Path) Base() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// String joins the segments with the platform separator.
func (p Path) String() string {
	return filepath.Join(p...)
}

// DirectoryPath returns the directory holding the object at p.
func DirectoryPath(p Path) Path {
	return p.Parent()
}

// ValueKey returns the segment used to address value: the hex MD5 digest of
// its bytes. It is an address, not a security boundary.
func ValueKey(value string) string {
	sum := md5.Sum([]byte(value))
	return hex.EncodeToString(sum[:])
}

// ValidSegment reports whether s can be used verbatim as one path segment.
func ValidSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\\x00")
}

// Table builds the paths for one table.
type Table struct {
	name string
}

// ForTable returns the path builder for the named table.
func ForTable(name string) Table {
	return Table{name: name}
}

// Name returns the table name.
func (t Table) Name() string { return t.name }

// BasePath is the table's root directory.
func (t Table) BasePath() Path { return Path{t.name} }

// FieldContainerPath is the root of the reverse index.
func (t Table) FieldContainerPath() Path { return t.BasePath().Join(FieldsDir) }

// EntryContainerPath is the root of the forward index.
func (t Table) EntryContainerPath() Path { return t.BasePath().Join(EntriesDir) }

// PathForField is the reverse index directory of a field.
func (t Table) PathForField(field string) Path {
	return t.FieldContainerPath().Join(field)
}

// ValuePathForField lists the entries whose field holds value.
func (t Table) ValuePathForField(field, value string) Path {
	return t.PathForField(field).Join(ValueKey(value))
}

// EntryPathForFieldValue is the reverse index leaf.
func (t Table) EntryPathForFieldValue(field, value, entryID string) Path {
	return t.ValuePathForField(field, value).Join(entryID)
}

// PathForEntry is the forward index directory of an entry.
func (t Table) PathForEntry(entryID string) Path {
	return t.EntryContainerPath().Join(entryID)
}

// FieldPathForEntry holds one leaf per value of the entry's field.
func (t Table) FieldPathForEntry(entryID, field string) Path {
	return t.PathForEntry(entryID).Join(field)
}

// FieldValuePathForEntry is the forward index leaf.
func (t Table) FieldValuePathForEntry(entryID, field, value string) Path {
	return t.FieldPathForEntry(entryID, field).Join(ValueKey(value))
}
