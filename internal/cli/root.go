// Package cli implements the dirstore command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/dirstore/internal/observe"
	"github.com/mesh-intelligence/dirstore/internal/paths"
	"github.com/mesh-intelligence/dirstore/pkg/dirstore"
	"github.com/mesh-intelligence/dirstore/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
	logFile   string
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags  rootFlags
	config *viper.Viper
	logger *slog.Logger
}

// NewRootCmd creates the top-level "dirstore" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:     "dirstore",
		Short:   "A table store kept as a tree of directories",
		Long:    "dirstore keeps table entries as directories on disk and indexes every\nfield value in a second directory tree for lookups by value.",
		Version: dirstore.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default: info)")
	pf.StringVar(&a.flags.logFile, "log-file", "", "write logs to a rotated file instead of stderr")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newTablesCmd(a),
		newEntriesCmd(a),
		newFindCmd(a),
		newFieldsCmd(a),
		newValuesCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newSetCmd(a),
		newClearCmd(a),
		newDeleteCmd(a),
		newCreateCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newWatchCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "dirstore:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode maps storage and I/O failures to exitSysError and everything
// else to exitUserError.
func exitCode(err error) int {
	var sysErr *systemError
	if errors.As(err, &sysErr) || errors.Is(err, types.ErrIOFailure) {
		return exitSysError
	}
	return exitUserError
}

// systemError marks a failure of the environment rather than of the input.
type systemError struct {
	err error
}

func (e *systemError) Error() string { return e.err.Error() }
func (e *systemError) Unwrap() error { return e.err }

// setup loads config.yaml and builds the logger.
func (a *app) setup() error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return &systemError{fmt.Errorf("resolve config dir: %w", err)}
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return &systemError{err}
	}
	a.config = cfg

	level := a.flags.logLevel
	if level == "" {
		level = cfg.GetString(cfgKeyLogLevel)
	}
	logger, err := observe.NewLogger(observe.LogConfig{Level: level, File: a.flags.logFile})
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}
