package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dirstore/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize dirstore configuration and storage",
		Long:  "Create the configuration directory with a default config.yaml and the data directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := paths.ResolveConfigDir(a.flags.configDir)
			if err != nil {
				return &systemError{err}
			}
			dataDir, err := a.resolveDataDir()
			if err != nil {
				return &systemError{err}
			}

			// Only pin data_dir in config.yaml when it was chosen explicitly.
			pinned := ""
			if a.flags.dataDir != "" {
				pinned = dataDir
			}
			wrote, err := writeConfigIfMissing(configDir, pinned)
			if err != nil {
				return &systemError{err}
			}
			if wrote {
				a.logger.Info("Wrote default config", "dir", configDir)
			}

			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			if err := backend.Detach(); err != nil {
				return &systemError{err}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "dirstore initialized at", dataDir)
			return nil
		},
	}
}
