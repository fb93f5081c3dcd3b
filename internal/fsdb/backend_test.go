package fsdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dirstore/pkg/types"
)

// attachTestBackend attaches a backend to a fresh data directory and detaches
// it when the test ends.
func attachTestBackend(t *testing.T, opts ...Option) (*Backend, string) {
	t.Helper()
	dataDir := filepath.Join(t.TempDir(), "base")

	b := NewBackend(opts...)
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendFS, DataDir: dataDir}))
	t.Cleanup(func() { _ = b.Detach() })
	return b, dataDir
}

func TestBackend_Attach(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "base")

	b := NewBackend()
	config := types.Config{Backend: types.BackendFS, DataDir: dataDir}
	require.NoError(t, b.Attach(config))

	info, err := os.Stat(dataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, dataDir, b.DataDir())

	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
	require.NoError(t, b.Detach())
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	b := NewBackend()

	assert.ErrorIs(t, b.Attach(types.Config{DataDir: t.TempDir()}), types.ErrBackendEmpty)
	assert.ErrorIs(t, b.Attach(types.Config{Backend: "sqlite", DataDir: t.TempDir()}), types.ErrBackendUnknown)
}

func TestBackend_Detach(t *testing.T) {
	b, _ := attachTestBackend(t)

	tbl, err := b.GetTable("t")
	require.NoError(t, err)

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "Detach must be idempotent")
	assert.Equal(t, "", b.DataDir())

	_, err = b.GetTable("t")
	assert.ErrorIs(t, err, types.ErrDetached)
	_, err = b.ListTables()
	assert.ErrorIs(t, err, types.ErrDetached)

	_, err = tbl.ListAllEntries()
	assert.ErrorIs(t, err, types.ErrDetached)
	assert.ErrorIs(t, tbl.AddFieldValues("e", "f", []string{"v"}), types.ErrDetached)
}

func TestBackend_GetTable(t *testing.T) {
	b, _ := attachTestBackend(t)

	tbl, err := b.GetTable("people")
	require.NoError(t, err)
	assert.Equal(t, "people", tbl.Name())

	again, err := b.GetTable("people")
	require.NoError(t, err)
	assert.Same(t, tbl, again)

	for _, name := range []string{"", ".", "..", "a/b", ".hidden"} {
		_, err := b.GetTable(name)
		assert.ErrorIs(t, err, types.ErrInvalidName, "name %q", name)
	}
}

func TestBackend_ListTables(t *testing.T) {
	b, dataDir := attachTestBackend(t)

	tables, err := b.ListTables()
	require.NoError(t, err)
	assert.Equal(t, []string{}, tables)

	for _, name := range []string{"B", "A"} {
		tbl, err := b.GetTable(name)
		require.NoError(t, err)
		require.NoError(t, tbl.AddFieldValues("e1", "f", []string{"v"}))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, ".dirstore.lock"), nil, 0o644))

	tables, err = b.ListTables()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, tables)
}
