package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	ConfigName = "savingsd"
	ConfigType = "yaml"
	EnvPrefix  = "SAVINGSD"

	// ConfigFileName is the config file looked up in the home directory
	ConfigFileName = ConfigName + "." + ConfigType
)

// Supported database backends
const (
	BackendMemDB     = "memdb"
	BackendGoLevelDB = "goleveldb"
)

// MetricsConfig configures the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
}

// Config is the ledger daemon configuration
type Config struct {
	Home            string        `mapstructure:"home" yaml:"home"`
	ChainID         string        `mapstructure:"chain_id" yaml:"chain_id"`
	DBBackend       string        `mapstructure:"db_backend" yaml:"db_backend"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level"`
	CheckInvariants bool          `mapstructure:"check_invariants" yaml:"check_invariants"`
	Metrics         MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() Config {
	return Config{
		Home:            DefaultNodeHome,
		ChainID:         Name + "-local",
		DBBackend:       BackendGoLevelDB,
		LogLevel:        "info",
		CheckInvariants: true,
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:26660",
		},
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Home == "" && c.DBBackend != BackendMemDB {
		return errors.New("home directory required for persistent backends")
	}
	if c.ChainID == "" {
		return errors.New("chain id required")
	}
	switch c.DBBackend {
	case BackendMemDB, BackendGoLevelDB:
	default:
		return errorsmod.Wrapf(errors.ErrUnsupported, "db backend %q", c.DBBackend)
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return errors.New("metrics listen address required")
	}
	return nil
}

// DataDir returns the directory holding the ledger database
func (c Config) DataDir() string {
	return filepath.Join(c.Home, "data")
}

// NewViper returns a viper instance with the defaults, environment binding
// and config file lookup used by LoadConfig
func NewViper(home string) *viper.Viper {
	def := DefaultConfig()
	v := viper.New()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetEnvPrefix(EnvPrefix)

	v.SetDefault("home", def.Home)
	v.SetDefault("chain_id", def.ChainID)
	v.SetDefault("db_backend", def.DBBackend)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("check_invariants", def.CheckInvariants)
	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
	v.SetDefault("metrics.listen", def.Metrics.Listen)

	if home != "" {
		v.Set("home", home)
	}

	v.SetConfigName(ConfigName)
	v.SetConfigType(ConfigType)
	v.AddConfigPath(v.GetString("home"))
	v.AddConfigPath(".")
	return v
}

// LoadConfig reads savingsd.yaml from v's config paths. A missing file is not
// an error: defaults and SAVINGSD_* environment variables apply.
func LoadConfig(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errorsmod.Wrap(err, "failed to read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errorsmod.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WriteConfig writes cfg as savingsd.yaml in its home directory
func WriteConfig(cfg Config) (string, error) {
	if err := os.MkdirAll(cfg.Home, 0o755); err != nil {
		return "", err
	}
	bz, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	path := filepath.Join(cfg.Home, ConfigFileName)
	return path, os.WriteFile(path, bz, 0o644)
}

// String renders cfg as YAML
func (c Config) String() string {
	bz, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(bz)
}
