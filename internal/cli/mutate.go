package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dirstore/pkg/types"
)

// fieldValueCmd builds add, remove and set, which share their arguments.
func fieldValueCmd(a *app, use, short string, op func(t types.Table, entry, field string, values []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <table> <entry> <field> <value>...",
		Short: short,
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(args[0], func(t types.Table) error {
				return op(t, args[1], args[2], args[3:])
			})
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	return fieldValueCmd(a, "add", "Add values to a field of an entry", types.Table.AddFieldValues)
}

func newRemoveCmd(a *app) *cobra.Command {
	return fieldValueCmd(a, "remove", "Remove values from a field of an entry", types.Table.RemoveFieldValues)
}

func newSetCmd(a *app) *cobra.Command {
	return fieldValueCmd(a, "set", "Replace the values of a field of an entry", types.Table.SetFieldValues)
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <table> <entry> <field>",
		Short: "Remove every value of a field of an entry",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(args[0], func(t types.Table) error {
				return t.ClearFieldValues(args[1], args[2])
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <entry>",
		Short: "Delete an entry and all of its values",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(args[0], func(t types.Table) error {
				return t.RemoveEntry(args[1])
			})
		},
	}
}

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <table> <field>=<value>...",
		Short: "Create an entry with a generated ID",
		Long:  "Create an entry with a new UUID v7 ID and the given field values, and print the ID.\nA field may be given more than once to add several values.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, order, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			id := newEntryID()
			err = a.withTable(args[0], func(t types.Table) error {
				for _, f := range order {
					if err := t.AddFieldValues(id, f, fields[f]); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), types.Entry{ID: id, Fields: fields})
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

// parseAssignments splits field=value arguments, grouping values by field.
// order lists fields in first-seen order.
func parseAssignments(args []string) (fields map[string][]string, order []string, err error) {
	fields = make(map[string][]string)
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		if !ok || field == "" {
			return nil, nil, fmt.Errorf("expected field=value, got %q", arg)
		}
		if _, seen := fields[field]; !seen {
			order = append(order, field)
		}
		if !slices.Contains(fields[field], value) {
			fields[field] = append(fields[field], value)
		}
	}
	return fields, order, nil
}

// newEntryID returns a time-ordered UUID v7, falling back to v4.
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
