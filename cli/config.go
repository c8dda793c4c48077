package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the CLI configuration. Precedence: flags, GQLBUILD_ environment
// variables, the .gqlbuild.yaml file, defaults.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Store  StoreConfig  `mapstructure:"store"`
	Render RenderConfig `mapstructure:"render"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// StoreConfig locates the persisted operation database.
type StoreConfig struct {
	Path  string `mapstructure:"path"`
	Table string `mapstructure:"table"`
}

// RenderConfig sets the render defaults.
type RenderConfig struct {
	Pretty   bool `mapstructure:"pretty"`
	Validate bool `mapstructure:"validate"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("store.path", "gqlbuild.db")
	v.SetDefault("store.table", "persisted_operations")
	v.SetDefault("render.pretty", false)
	v.SetDefault("render.validate", false)
}

// loadConfig reads configuration into v. An explicit config file must exist;
// the default one is optional.
func loadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".gqlbuild")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("GQLBUILD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// flagKeys maps config keys to the flags that override them.
var flagKeys = map[string]string{
	"log.level":       "log-level",
	"store.path":      "store",
	"render.pretty":   "pretty",
	"render.validate": "validate",
}

// bindFlags makes the flags cmd defines override their config keys when set.
// Flags the command does not have are skipped.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, name := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}
	return nil
}

// newLogger builds a production logger writing to stderr at the configured
// level.
func newLogger(cfg LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = level
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	zcfg.Sampling = nil

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
