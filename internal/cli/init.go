package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reffo/internal/logger"
	"github.com/mesh-intelligence/reffo/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the beacon's configuration and store",
		Long: "Create the configuration and data directories, write a default config.yaml,\n" +
			"and seed the beacon settings. Running init again keeps existing files.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

type initResult struct {
	ConfigDir     string               `json:"configDir"`
	DataDir       string               `json:"dataDir"`
	ConfigWritten bool                 `json:"configWritten"`
	Settings      types.BeaconSettings `json:"settings"`
}

func (a *app) runInit(cmd *cobra.Command) error {
	configPath, err := a.configPath()
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	dataDir, err := a.dataDir()
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}

	written, err := writeConfigIfMissing(configPath, configFile{
		Backend:            types.BackendSQLite,
		DataDir:            dataDir,
		Currency:           a.cfg.GetString(cfgKeyCurrency),
		SellingScope:       a.cfg.GetString(cfgKeySellingScope),
		SellingRadiusMiles: a.cfg.GetFloat64(cfgKeySellingRange),
	})
	if err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	res := initResult{ConfigDir: filepath.Dir(configPath), DataDir: dataDir, ConfigWritten: written}
	err = a.withStore(func(s types.BeaconStore) error {
		settings, err := a.applySellingDefaults(s)
		if err != nil {
			return err
		}
		res.Settings = *settings
		logger.L().Info("beacon.initialized", "beacon_id", settings.ID, "config_written", written)
		return nil
	})
	if err != nil {
		return err
	}

	return a.render(cmd, res, func(w io.Writer) {
		fmt.Fprintln(w, "Beacon initialized")
		fmt.Fprintln(w, "  beacon:", res.Settings.ID)
		fmt.Fprintln(w, "  config:", res.ConfigDir)
		fmt.Fprintln(w, "  data:  ", res.DataDir)
	})
}

// applySellingDefaults copies selling_scope and selling_radius_miles from
// the configuration onto the beacon settings when they are set.
func (a *app) applySellingDefaults(s types.BeaconStore) (*types.BeaconSettings, error) {
	settings, err := beaconSettings(s)
	if err != nil {
		return nil, err
	}
	scope := a.cfg.GetString(cfgKeySellingScope)
	radiusSet := a.cfg.IsSet(cfgKeySellingRange)
	if scope == "" && !radiusSet {
		return settings, nil
	}
	if scope != "" {
		settings.DefaultSellingScope = scope
	}
	if radiusSet {
		settings.DefaultSellingRadiusMiles = a.cfg.GetFloat64(cfgKeySellingRange)
	}

	table, err := getTable(s, types.TableSettings)
	if err != nil {
		return nil, err
	}
	if _, err := table.Set(settings.ID, settings); err != nil {
		return nil, fmt.Errorf("apply selling defaults: %w", err)
	}
	return settings, nil
}

// beaconSettings returns the store's beacon settings.
func beaconSettings(s types.BeaconStore) (*types.BeaconSettings, error) {
	table, err := getTable(s, types.TableSettings)
	if err != nil {
		return nil, err
	}
	v, err := table.Get(s.BeaconID())
	if err != nil {
		return nil, sysError(fmt.Errorf("read beacon settings: %w", err))
	}
	return v.(*types.BeaconSettings), nil
}
