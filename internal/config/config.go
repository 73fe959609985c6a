// Package config loads qmlscan settings from qmlscan.yaml and QMLSCAN_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/phobologic/qmlscan/internal/exports"
	"github.com/phobologic/qmlscan/internal/lang"
)

// Output formats.
const (
	FormatTOON = "toon"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultMaxFileSize is the size above which files are skipped.
const DefaultMaxFileSize = 1_000_000 // 1 MB

// Config represents the qmlscan configuration
type Config struct {
	Format      string   `mapstructure:"format" yaml:"format"`
	LogLevel    string   `mapstructure:"log_level" yaml:"log_level"`
	MaxFileSize int      `mapstructure:"max_file_size" yaml:"max_file_size"`
	Extensions  []string `mapstructure:"extensions" yaml:"extensions"`

	exports.Options `mapstructure:",squash" yaml:",inline"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Format:      FormatTOON,
		LogLevel:    "warn",
		MaxFileSize: DefaultMaxFileSize,
		Extensions:  slices.Clone(lang.Languages[lang.CPP].Extensions),
		Options:     exports.DefaultOptions(),
	}
}

// Load reads the configuration. An explicit file must exist; otherwise
// qmlscan.yaml is looked for in the working directory and then in root, and
// defaults apply when neither has one.
func Load(file, root string) (*Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("format", d.Format)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("max_file_size", d.MaxFileSize)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("register_function", d.RegisterFunction)
	v.SetDefault("assert_functions", d.AssertFunctions)
	v.SetDefault("string_functions", d.StringFunctions)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("qmlscan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if root != "" {
			v.AddConfigPath(root)
		}
	}

	v.SetEnvPrefix("QMLSCAN")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be used as given.
func (c *Config) Validate() error {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	switch c.Format {
	case FormatTOON, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("format must be one of toon, json, yaml, got: %s", c.Format)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got: %d", c.MaxFileSize)
	}
	if c.RegisterFunction == "" {
		return fmt.Errorf("register_function must not be empty")
	}
	return nil
}
