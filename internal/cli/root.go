// Package cli implements the reffo command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/reffo/internal/logger"
	"github.com/mesh-intelligence/reffo/internal/paths"
	"github.com/mesh-intelligence/reffo/pkg/sqlite"
	"github.com/mesh-intelligence/reffo/pkg/types"
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
	debug     bool
}

// app is the state shared by the commands of one root command.
type app struct {
	flags rootFlags
	cfg   *viper.Viper

	// newStore builds the store attached by withStore.
	newStore func() types.BeaconStore
}

// NewRootCmd creates the top-level "reffo" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{newStore: sqlite.NewBackend}

	root := &cobra.Command{
		Use:   "reffo",
		Short: "A local beacon for peer-to-peer classifieds",
		Long: "reffo keeps a beacon's refs, offers, negotiations, and media in a local\n" +
			"store and exports them as Schema.org linked data.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.BoolVar(&a.flags.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newStatusCmd(a),
		newCategoriesCmd(a),
		newJSONLDCmd(a),
		newRefCmd(a),
		newOfferCmd(a),
		newNegotiateCmd(a),
		newMediaCmd(a),
		newGeoCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "reffo:", err)
		os.Exit(exitCode(err))
	}
}

// exitError carries a non-default exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// sysError marks err as a system failure (exit code 2). Everything else
// is reported as a user error.
func sysError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitSysError, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return exitUserError
}

// withStore resolves the data directory, starts logging, attaches the
// store, and runs fn. The store is detached when fn returns.
func (a *app) withStore(fn func(types.BeaconStore) error) error {
	dataDir, err := a.dataDir()
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	cleanup, err := logger.Setup(logger.Config{Dir: dataDir, Debug: a.debug()})
	if err != nil {
		return sysError(fmt.Errorf("setup logging: %w", err))
	}
	defer cleanup()

	store := a.newStore()
	if err := store.Attach(a.storeConfig(dataDir)); err != nil {
		if isConfigError(err) {
			return fmt.Errorf("attach store: %w", err)
		}
		return sysError(fmt.Errorf("attach store: %w", err))
	}
	defer func() {
		if err := store.Detach(); err != nil {
			logger.L().Error("store.detach_failed", "error", err)
		}
	}()
	return fn(store)
}

// getTable returns a standard table; a missing table is a system error.
func getTable(s types.BeaconStore, name string) (types.Table, error) {
	t, err := s.GetTable(name)
	if err != nil {
		return nil, sysError(fmt.Errorf("get %s table: %w", name, err))
	}
	return t, nil
}

// dataDir follows the precedence --data-dir > config.yaml data_dir >
// REFFO_DATA_DIR > platform default.
func (a *app) dataDir() (string, error) {
	return paths.ResolveDataDir(a.flags.dataDir, a.cfg.GetString(cfgKeyDataDir))
}

func (a *app) configDir() (string, error) {
	return paths.ResolveConfigDir(a.flags.configDir)
}

func (a *app) debug() bool {
	return a.flags.debug || a.cfg.GetBool(cfgKeyDebug)
}

func (a *app) out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

// isConfigError reports whether err comes from an invalid configuration
// value the user can fix.
func isConfigError(err error) bool {
	for _, target := range []error{types.ErrBackendEmpty, types.ErrBackendUnknown, types.ErrInvalidCurrency} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
