package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dirstore/pkg/types"
)

func newTablesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			names, err := backend.ListTables()
			if err != nil {
				return err
			}
			return a.printList(cmd, names)
		},
	}
}

func newEntriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "entries <table>",
		Short: "List the entries of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(args[0], func(t types.Table) error {
				ids, err := t.ListAllEntries()
				if err != nil {
					return err
				}
				return a.printList(cmd, ids)
			})
		},
	}
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <table> <field> <value>...",
		Short: "List entries that have any of the given values in a field",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(args[0], func(t types.Table) error {
				ids, err := t.ListEntriesByFieldValue(args[1], args[2:])
				if err != nil {
					return err
				}
				// An entry matching several values is listed once per value.
				return a.printList(cmd, slices.Compact(ids))
			})
		},
	}
}

func newFieldsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fields <table> <entry>",
		Short: "List the fields of an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(args[0], func(t types.Table) error {
				fields, err := t.ListFieldsOfEntry(args[1])
				if err != nil {
					return err
				}
				return a.printList(cmd, fields)
			})
		},
	}
}

func newValuesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "values <table> <entry> <field>",
		Short: "List the values of a field of an entry",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(args[0], func(t types.Table) error {
				values, err := t.ListValuesForField(args[1], args[2])
				if err != nil {
					return err
				}
				return a.printList(cmd, values)
			})
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <table> <entry>",
		Short: "Show every field and value of an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(args[0], func(t types.Table) error {
				entry, err := t.GetEntry(args[1])
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), entry)
				}
				printEntry(cmd, entry)
				return nil
			})
		},
	}
}

func printEntry(cmd *cobra.Command, entry types.Entry) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, entry.ID)
	fields := make([]string, 0, len(entry.Fields))
	for f := range entry.Fields {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	for _, f := range fields {
		for _, v := range entry.Fields[f] {
			fmt.Fprintf(out, "  %s: %s\n", f, v)
		}
	}
}
