// Package cli implements the geokernel command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/geokernel/internal/logging"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// exitCode maps an error returned by a command to a process exit code.
// Unclassified errors are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// app is the state shared by the subcommands of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	cfg       types.Config
	log       *logging.Logger
	stderr    io.Writer
}

// NewRootCmd creates the top-level "geokernel" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{stderr: os.Stderr}
	root := &cobra.Command{
		Use:   "geokernel",
		Short: "Inspect, merge, compare and store geometric models",
		Long: "geokernel works on model files (.gi, .gi.zst, .gi.lz4): it checks their\n" +
			"topology, merges and purges them, grades candidates against a reference,\n" +
			"converts GeoJSON and keeps models in a local store.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory holding the model store")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newCheckCmd(a),
		newCompareCmd(a),
		newGradeCmd(a),
		newMergeCmd(a),
		newPurgeCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newStoreCmd(a),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.stderr = cmd.ErrOrStderr()
	dir, cfg, err := loadConfig(a.flags)
	if err != nil {
		return sysError(err)
	}
	if err := cfg.Validate(); err != nil {
		return userError(fmt.Errorf("config: %w", err))
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return userError(err)
	}
	a.configDir = dir
	a.cfg = cfg
	a.log = logging.New(a.stderr, level, cfg.LogFormat)
	return nil
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "geokernel:", err)
	}
	os.Exit(exitCode(err))
}
