package layout

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryPath(t *testing.T) {
	assert.Equal(t, Path{"a", "b"}, DirectoryPath(Path{"a", "b", "c"}))
	assert.Equal(t, Path{}, DirectoryPath(Path{"a"}))
	assert.Equal(t, Path{}, DirectoryPath(Path{}))
}

func TestPath_JoinDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 8)
	base[0] = "t"

	a := base.Join("a")
	b := base.Join("b")

	assert.Equal(t, Path{"t", "a"}, a)
	assert.Equal(t, Path{"t", "b"}, b)
	assert.Equal(t, Path{"t"}, base)
}

func TestPath_String(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b", "c"), Path{"a", "b", "c"}.String())
	assert.Equal(t, "c", Path{"a", "b", "c"}.Base())
	assert.Equal(t, "", Path{}.Base())
}

func TestValueKey(t *testing.T) {
	// md5("value")
	assert.Equal(t, "2063c1608d6e0baf80249c42e2be5804", ValueKey("value"))
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", ValueKey(""))
	assert.Equal(t, ValueKey("x"), ValueKey("x"))
	assert.NotEqual(t, ValueKey("x"), ValueKey("y"))

	complex := ValueKey("value,./;:'[]{}()!@#$%^&*")
	assert.Len(t, complex, 32)
	assert.True(t, ValidSegment(complex))
}

func TestValidSegment(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"entry-1", true},
		{"with space", true},
		{"ünïcode", true},
		{"", false},
		{".", false},
		{"..", false},
		{"a/b", false},
		{`a\b`, false},
		{"a\x00b", false},
		{".hidden", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidSegment(tt.in))
		})
	}
}

func TestTablePaths(t *testing.T) {
	const (
		tableName = "table"
		fieldName = "field"
		valueName = "value"
		entryID   = "entry-id"
	)
	valueKey := ValueKey(valueName)
	tbl := ForTable(tableName)

	require.Equal(t, tableName, tbl.Name())
	assert.Equal(t, Path{tableName}, tbl.BasePath())
	assert.Equal(t, Path{tableName, "fields"}, tbl.FieldContainerPath())
	assert.Equal(t, Path{tableName, "entries"}, tbl.EntryContainerPath())

	assert.Equal(t, Path{tableName, "fields", fieldName}, tbl.PathForField(fieldName))
	assert.Equal(t, Path{tableName, "fields", fieldName, valueKey}, tbl.ValuePathForField(fieldName, valueName))
	assert.Equal(t, Path{tableName, "fields", fieldName, valueKey, entryID}, tbl.EntryPathForFieldValue(fieldName, valueName, entryID))

	assert.Equal(t, Path{tableName, "entries", entryID}, tbl.PathForEntry(entryID))
	assert.Equal(t, Path{tableName, "entries", entryID, fieldName}, tbl.FieldPathForEntry(entryID, fieldName))
	assert.Equal(t, Path{tableName, "entries", entryID, fieldName, valueKey}, tbl.FieldValuePathForEntry(entryID, fieldName, valueName))
}
