package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dirstore/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		tables []string
	)
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write a snapshot of the store to a file",
		Long:  "Write every entry of the selected tables (all by default) to a JSONL or SQLite file.\nA .zst suffix compresses JSONL output with zstd.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			n, err := export.WriteFile(cmd.Context(), backend, args[0], f, tables)
			if err != nil {
				return &systemError{fmt.Errorf("export: %w", err)}
			}
			a.logger.Info("Exported entries", "count", n, "file", args[0], "format", f)
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d entries to %s\n", n, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(export.FormatJSONL), "output format: jsonl or sqlite")
	cmd.Flags().StringArrayVar(&tables, "table", nil, "table to export (repeatable; default all)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a JSONL snapshot into the store",
		Long:  "Add every value of a JSONL snapshot (optionally .zst compressed) to the store.\nValues already present are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := export.ReadJSONL(args[0])
			if err != nil {
				return &systemError{fmt.Errorf("import: %w", err)}
			}
			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			n, err := export.Load(backend, records)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries from %s\n", n, args[0])
			return nil
		},
	}
}
