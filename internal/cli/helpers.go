// Shared helpers for dirstore CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dirstore/internal/fsdb"
	"github.com/mesh-intelligence/dirstore/internal/observe"
	"github.com/mesh-intelligence/dirstore/internal/paths"
	"github.com/mesh-intelligence/dirstore/pkg/types"
)

// resolveDataDir returns the data directory following flag > config.yaml >
// env > platform default.
func (a *app) resolveDataDir() (string, error) {
	return paths.ResolveDataDir(a.flags.dataDir, a.config.GetString(cfgKeyDataDir))
}

// attachBackend resolves the data directory, creates a filesystem backend
// logging its operations, and attaches it. The caller must defer
// backend.Detach().
func (a *app) attachBackend(observers ...types.Observer) (*fsdb.Backend, error) {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return nil, &systemError{fmt.Errorf("resolve data dir: %w", err)}
	}

	opts := []fsdb.Option{
		fsdb.WithLogger(a.logger),
		fsdb.WithObserver(observe.NewLogObserver(a.logger)),
	}
	for _, o := range observers {
		opts = append(opts, fsdb.WithObserver(o))
	}

	backend := fsdb.NewBackend(opts...)
	cfg := types.Config{
		Backend: a.config.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}
	if err := backend.Attach(cfg); err != nil {
		return nil, &systemError{fmt.Errorf("attach backend: %w", err)}
	}
	return backend, nil
}

// withTable attaches the backend, opens the named table, and runs fn.
func (a *app) withTable(name string, fn func(types.Table) error) error {
	backend, err := a.attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	table, err := backend.GetTable(name)
	if err != nil {
		return err
	}
	return fn(table)
}

// printList writes names one per line, or as a JSON array.
func (a *app) printList(cmd *cobra.Command, names []string) error {
	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), names)
	}
	for _, n := range names {
		fmt.Fprintln(cmd.OutOrStdout(), n)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// writeJSONLine writes v as a single line of JSON.
func writeJSONLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
