package watch

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dirstore/internal/fsdb"
	"github.com/mesh-intelligence/dirstore/pkg/types"
)

func TestSegments(t *testing.T) {
	root := filepath.Join("data", "T", "entries")

	assert.Nil(t, segments(root, root))
	assert.Nil(t, segments(root, filepath.Join("data", "T")))
	assert.Nil(t, segments(root, filepath.Join("data", "other")))
	assert.Equal(t, []string{"e1"}, segments(root, filepath.Join(root, "e1")))
	assert.Equal(t, []string{"e1", "f", "k"}, segments(root, filepath.Join(root, "e1", "f", "k")))
}

func TestClassify(t *testing.T) {
	root := filepath.Join("data", "T", "entries")
	w := &Watcher{table: "T", entriesDir: root}

	tests := []struct {
		name string
		ev   fsnotify.Event
		want Event
		ok   bool
	}{
		{
			name: "entry created",
			ev:   fsnotify.Event{Name: filepath.Join(root, "e1"), Op: fsnotify.Create},
			want: Event{Kind: EntryCreated, Table: "T", Entry: "e1"},
			ok:   true,
		},
		{
			name: "entry removed",
			ev:   fsnotify.Event{Name: filepath.Join(root, "e1"), Op: fsnotify.Remove},
			want: Event{Kind: EntryRemoved, Table: "T", Entry: "e1"},
			ok:   true,
		},
		{
			name: "field directory",
			ev:   fsnotify.Event{Name: filepath.Join(root, "e1", "f"), Op: fsnotify.Create},
			want: Event{Kind: FieldChanged, Table: "T", Entry: "e1", Field: "f"},
			ok:   true,
		},
		{
			name: "value leaf written",
			ev:   fsnotify.Event{Name: filepath.Join(root, "e1", "f", "abc"), Op: fsnotify.Write},
			want: Event{Kind: FieldChanged, Table: "T", Entry: "e1", Field: "f"},
			ok:   true,
		},
		{
			name: "chmod ignored",
			ev:   fsnotify.Event{Name: filepath.Join(root, "e1"), Op: fsnotify.Chmod},
			ok:   false,
		},
		{
			name: "outside entries",
			ev:   fsnotify.Event{Name: filepath.Join("data", "T", "fields", "f"), Op: fsnotify.Create},
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := w.classify(tt.ev)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestWatcher_Run(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	store := fsdb.NewBackend()
	require.NoError(t, store.Attach(types.Config{Backend: types.BackendFS, DataDir: dataDir}))
	defer store.Detach()

	w, err := New(dataDir, "T", nil)
	require.NoError(t, err)

	var (
		mu     sync.Mutex
		events []Event
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(e Event) {
			mu.Lock()
			events = append(events, e)
			mu.Unlock()
		})
	}()

	tbl, err := store.GetTable("T")
	require.NoError(t, err)
	require.NoError(t, tbl.AddFieldValues("e1", "f", []string{"v"}))

	seen := func(want Event) func() bool {
		return func() bool {
			mu.Lock()
			defer mu.Unlock()
			for _, e := range events {
				if e == want {
					return true
				}
			}
			return false
		}
	}
	assert.Eventually(t, seen(Event{Kind: EntryCreated, Table: "T", Entry: "e1"}), 5*time.Second, 10*time.Millisecond)

	require.NoError(t, tbl.RemoveEntry("e1"))
	assert.Eventually(t, seen(Event{Kind: EntryRemoved, Table: "T", Entry: "e1"}), 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
