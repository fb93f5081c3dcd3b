// Package export copies the contents of a Store into portable snapshot files
// and loads JSONL snapshots back. Snapshots are flat: one record per entry
// carrying every field and its literal values.
package export

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/dirstore/pkg/types"
)

// Record is one entry of one table.
type Record struct {
	Table  string              `json:"table"`
	Entry  string              `json:"entry"`
	Fields map[string][]string `json:"fields"`
}

// Snapshot reads every entry of the named tables, or of all tables when
// names is empty. Tables are read concurrently; records come back ordered by
// table, then entry.
func Snapshot(ctx context.Context, store types.Store, names []string) ([]Record, error) {
	if len(names) == 0 {
		all, err := store.ListTables()
		if err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		names = all
	} else {
		names = slices.Clone(names)
		slices.Sort(names)
		names = slices.Compact(names)
	}

	perTable := make([][]Record, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			records, err := snapshotTable(ctx, store, name)
			if err != nil {
				return fmt.Errorf("snapshot %s: %w", name, err)
			}
			perTable[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []Record
	for _, rs := range perTable {
		records = append(records, rs...)
	}
	return records, nil
}

func snapshotTable(ctx context.Context, store types.Store, name string) ([]Record, error) {
	table, err := store.GetTable(name)
	if err != nil {
		return nil, err
	}
	ids, err := table.ListAllEntries()
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, err := table.GetEntry(id)
		if err != nil {
			return nil, err
		}
		records = append(records, Record{Table: name, Entry: id, Fields: entry.Fields})
	}
	return records, nil
}

// Load adds the values of every record to store. Values already present are
// left as they are. Returns the number of records loaded.
func Load(store types.Store, records []Record) (int, error) {
	for i, rec := range records {
		table, err := store.GetTable(rec.Table)
		if err != nil {
			return i, fmt.Errorf("record %d: %w", i+1, err)
		}
		fields := make([]string, 0, len(rec.Fields))
		for field := range rec.Fields {
			fields = append(fields, field)
		}
		slices.Sort(fields)
		for _, field := range fields {
			if err := table.AddFieldValues(rec.Entry, field, rec.Fields[field]); err != nil {
				return i, fmt.Errorf("record %d: %w", i+1, err)
			}
		}
	}
	return len(records), nil
}
