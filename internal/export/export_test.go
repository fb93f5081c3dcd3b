package export

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dirstore/internal/fsdb"
	"github.com/mesh-intelligence/dirstore/internal/layout"
	"github.com/mesh-intelligence/dirstore/pkg/types"
)

func newStore(t *testing.T) *fsdb.Backend {
	t.Helper()
	b := fsdb.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendFS, DataDir: filepath.Join(t.TempDir(), "data")}))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

func seed(t *testing.T, store types.Store) {
	t.Helper()
	people, err := store.GetTable("people")
	require.NoError(t, err)
	require.NoError(t, people.AddFieldValues("p2", "name", []string{"bob"}))
	require.NoError(t, people.AddFieldValues("p1", "name", []string{"alice"}))
	require.NoError(t, people.AddFieldValues("p1", "tag", []string{"x", "y,z"}))

	pets, err := store.GetTable("pets")
	require.NoError(t, err)
	require.NoError(t, pets.AddFieldValues("rex", "owner", []string{"p1"}))
}

var seeded = []Record{
	{Table: "people", Entry: "p1", Fields: map[string][]string{"name": {"alice"}, "tag": {"x", "y,z"}}},
	{Table: "people", Entry: "p2", Fields: map[string][]string{"name": {"bob"}}},
	{Table: "pets", Entry: "rex", Fields: map[string][]string{"owner": {"p1"}}},
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("jsonl")
	require.NoError(t, err)
	assert.Equal(t, FormatJSONL, f)

	f, err = ParseFormat("sqlite")
	require.NoError(t, err)
	assert.Equal(t, FormatSQLite, f)

	_, err = ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestSnapshot(t *testing.T) {
	store := newStore(t)
	seed(t, store)

	records, err := Snapshot(context.Background(), store, nil)
	require.NoError(t, err)
	assert.Equal(t, seeded, records)

	records, err = Snapshot(context.Background(), store, []string{"pets", "pets"})
	require.NoError(t, err)
	assert.Equal(t, seeded[2:], records)

	records, err = Snapshot(context.Background(), store, []string{"missing"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestJSONLRoundTrip(t *testing.T) {
	for _, name := range []string{"dump.jsonl", "dump.jsonl.zst"} {
		t.Run(name, func(t *testing.T) {
			src := newStore(t)
			seed(t, src)

			path := filepath.Join(t.TempDir(), "out", name)
			n, err := WriteFile(context.Background(), src, path, FormatJSONL, nil)
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			records, err := ReadJSONL(path)
			require.NoError(t, err)
			assert.Equal(t, seeded, records)

			dst := newStore(t)
			loaded, err := Load(dst, records)
			require.NoError(t, err)
			assert.Equal(t, 3, loaded)

			again, err := Snapshot(context.Background(), dst, nil)
			require.NoError(t, err)
			assert.Equal(t, seeded, again)

			people, err := dst.GetTable("people")
			require.NoError(t, err)
			ids, err := people.ListEntriesByFieldValue("tag", []string{"y,z"})
			require.NoError(t, err)
			assert.Equal(t, []string{"p1"}, ids)
		})
	}
}

func TestJSONLPlainFormat(t *testing.T) {
	store := newStore(t)
	seed(t, store)

	path := filepath.Join(t.TempDir(), "dump.jsonl")
	_, err := WriteFile(context.Background(), store, path, FormatJSONL, []string{"pets"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"table":"pets","entry":"rex","fields":{"owner":["p1"]}}`+"\n", string(data))
}

func TestReadJSONLSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.jsonl")
	content := strings.Join([]string{
		`{"table":"t","entry":"e1","fields":{"f":["v"]}}`,
		``,
		`not json`,
		`{"table":"","entry":"e2"}`,
		`{"table":"t","entry":"e3","fields":{}}`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := ReadJSONL(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "e1", records[0].Entry)
	assert.Equal(t, "e3", records[1].Entry)

	_, err = ReadJSONL(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidNames(t *testing.T) {
	store := newStore(t)

	_, err := Load(store, []Record{{Table: "t", Entry: "../x", Fields: map[string][]string{"f": {"v"}}}})
	assert.ErrorIs(t, err, types.ErrInvalidName)

	_, err = Load(store, []Record{{Table: "..", Entry: "e", Fields: map[string][]string{"f": {"v"}}}})
	assert.ErrorIs(t, err, types.ErrInvalidName)
}

func TestSQLiteExport(t *testing.T) {
	store := newStore(t)
	seed(t, store)

	path := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	n, err := WriteFile(context.Background(), store, path, FormatSQLite, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM field_values`).Scan(&count))
	assert.Equal(t, 5, count)

	var entry string
	require.NoError(t, db.QueryRow(
		`SELECT entry_id FROM field_values WHERE table_name = ? AND field_name = ? AND value_key = ?`,
		"people", "tag", layout.ValueKey("y,z"),
	).Scan(&entry))
	assert.Equal(t, "p1", entry)
}

func TestWriteFileUnknownFormat(t *testing.T) {
	store := newStore(t)

	_, err := WriteFile(context.Background(), store, filepath.Join(t.TempDir(), "x"), Format("csv"), nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
