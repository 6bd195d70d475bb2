package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/reffo/internal/paths"
	"github.com/mesh-intelligence/reffo/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "REFFO"

	cfgKeyBackend      = "backend"
	cfgKeyDataDir      = "data_dir"
	cfgKeyCurrency     = "currency"
	cfgKeySellingScope = "selling_scope"
	cfgKeySellingRange = "selling_radius_miles"
	cfgKeyDebug        = "debug"
)

// envKeys are the config keys that REFFO_* variables override. data_dir is
// left out: its env variable ranks below config.yaml and is handled by the
// paths package.
var envKeys = []string{cfgKeyBackend, cfgKeyCurrency, cfgKeySellingScope, cfgKeySellingRange, cfgKeyDebug}

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend            string  `yaml:"backend"`
	DataDir            string  `yaml:"data_dir,omitempty"`
	Currency           string  `yaml:"currency,omitempty"`
	SellingScope       string  `yaml:"selling_scope,omitempty"`
	SellingRadiusMiles float64 `yaml:"selling_radius_miles,omitempty"`
}

// loadConfig reads config.yaml from the resolved config directory. A
// missing file is not an error.
func (a *app) loadConfig() error {
	configDir, err := a.configDir()
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	for _, k := range envKeys {
		if err := v.BindEnv(k); err != nil {
			return sysError(fmt.Errorf("bind %s: %w", k, err))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	a.cfg = v
	return nil
}

// storeConfig builds the store configuration for dataDir.
func (a *app) storeConfig(dataDir string) types.Config {
	return types.Config{
		Backend:         a.cfg.GetString(cfgKeyBackend),
		DataDir:         dataDir,
		DefaultCurrency: a.cfg.GetString(cfgKeyCurrency),
	}
}

// writeConfigIfMissing creates config.yaml if the file does not exist.
// It reports whether the file was written.
func writeConfigIfMissing(path string, cfg configFile) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# reffo beacon configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// configPath returns the config.yaml path in the resolved config dir.
func (a *app) configPath() (string, error) {
	dir, err := a.configDir()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile(dir), nil
}
