package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"slices"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/dirstore/internal/layout"
)

// sqliteSchema stores one row per value. The secondary index mirrors the
// reverse index of the directory tree.
const sqliteSchema = `
CREATE TABLE field_values (
    table_name TEXT NOT NULL,
    entry_id   TEXT NOT NULL,
    field_name TEXT NOT NULL,
    value      TEXT NOT NULL,
    value_key  TEXT NOT NULL,
    PRIMARY KEY (table_name, entry_id, field_name, value)
);
CREATE INDEX idx_field_values_lookup ON field_values (table_name, field_name, value_key);
`

const insertValue = `INSERT OR IGNORE INTO field_values
    (table_name, entry_id, field_name, value, value_key) VALUES (?, ?, ?, ?, ?)`

// writeSQLite writes records into a fresh SQLite database at path.
func writeSQLite(ctx context.Context, path string, records []Record) error {
	return replaceAtomically(path, func(f *os.File) error {
		// The driver opens the file by name; only its path is needed here.
		name := f.Name()
		if err := f.Truncate(0); err != nil {
			return fmt.Errorf("truncating temp file: %w", err)
		}

		db, err := sql.Open("sqlite", name)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		defer db.Close()

		if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if err := insertRecords(ctx, db, records); err != nil {
			return err
		}
		if err := db.Close(); err != nil {
			return fmt.Errorf("close sqlite: %w", err)
		}
		return nil
	})
}

func insertRecords(ctx context.Context, db *sql.DB, records []Record) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertValue)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		fields := make([]string, 0, len(rec.Fields))
		for field := range rec.Fields {
			fields = append(fields, field)
		}
		slices.Sort(fields)
		for _, field := range fields {
			for _, value := range rec.Fields[field] {
				if _, err := stmt.ExecContext(ctx, rec.Table, rec.Entry, field, value, layout.ValueKey(value)); err != nil {
					return fmt.Errorf("insert %s/%s/%s: %w", rec.Table, rec.Entry, field, err)
				}
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
