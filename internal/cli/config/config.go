package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/conduit-lang/crudkit/internal/schema"
)

// FileName is the configuration file looked up in the working directory
// and in $HOME/.crudkit.
const FileName = "crudkit.yml"

// Config represents the crudkit configuration
type Config struct {
	// Input lists the package directories scanned for resources.
	Input []string `mapstructure:"input"`
	// Output is the directory generated files are written to. It must be
	// the scanned package directory. Empty writes each file next to its
	// source.
	Output   string         `mapstructure:"output"`
	Defaults DefaultsConfig `mapstructure:"defaults"`

	// File is the configuration file that was read, if any.
	File string `mapstructure:"-"`
}

// DefaultsConfig holds the resource options applied when a directive does
// not set them.
type DefaultsConfig struct {
	MaxLimit int64 `mapstructure:"max_limit"`
	Auth     bool  `mapstructure:"auth"`
	Partials bool  `mapstructure:"partials"`
}

// Schema converts the defaults for the resource parser.
func (d DefaultsConfig) Schema() schema.Defaults {
	return schema.Defaults{MaxLimit: d.MaxLimit, Auth: d.Auth, Partials: d.Partials}
}

// Default returns the configuration used without a config file.
func Default() *Config {
	d := schema.DefaultDefaults()
	return &Config{
		Input: []string{"."},
		Defaults: DefaultsConfig{
			MaxLimit: d.MaxLimit,
			Auth:     d.Auth,
			Partials: d.Partials,
		},
	}
}

// Load reads the configuration. An explicit path must exist; otherwise
// crudkit.yml is optional. CRUDKIT_ prefixed environment variables
// override file values.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".crudkit"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write stores cfg as YAML at path.
func Write(path string, cfg *Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	v := viper.New()
	v.Set("input", cfg.Input)
	v.Set("output", cfg.Output)
	v.Set("defaults.max_limit", cfg.Defaults.MaxLimit)
	v.Set("defaults.auth", cfg.Defaults.Auth)
	v.Set("defaults.partials", cfg.Defaults.Partials)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("input", d.Input)
	v.SetDefault("output", d.Output)
	v.SetDefault("defaults.max_limit", d.Defaults.MaxLimit)
	v.SetDefault("defaults.auth", d.Defaults.Auth)
	v.SetDefault("defaults.partials", d.Defaults.Partials)

	v.SetEnvPrefix("CRUDKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if len(cfg.Input) == 0 {
		return fmt.Errorf("input must list at least one directory")
	}
	for _, dir := range cfg.Input {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("input contains an empty directory")
		}
	}
	if cfg.Defaults.MaxLimit <= 0 {
		return fmt.Errorf("defaults.max_limit must be positive, got: %d", cfg.Defaults.MaxLimit)
	}
	return nil
}
