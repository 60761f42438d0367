// Package config loads rpmhdr settings from an optional TOML file.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/ralt/rpmhdr/internal/models"
	"github.com/ralt/rpmhdr/rpm"
)

// Config contains the settings shared by all commands
type Config struct {
	// Decoder limits
	MaxTags      uint32 `toml:"max_tags"`
	MaxStoreSize uint32 `toml:"max_store_size"`

	// Scanning
	Workers int `toml:"workers"`

	// Output
	LogLevel      string `toml:"log_level"`
	ShowValues    bool   `toml:"show_values"`
	MaxBinaryDump int    `toml:"max_binary_dump"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		MaxTags:       rpm.DefaultMaxTags,
		MaxStoreSize:  rpm.DefaultMaxStoreSize,
		Workers:       runtime.GOMAXPROCS(0),
		LogLevel:      "info",
		MaxBinaryDump: 64,
	}
}

// Load reads path on top of the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, &models.InspectError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("failed to load %s: %w", path, err),
		}
	}
	for _, key := range meta.Undecoded() {
		logrus.Warnf("Ignoring unknown configuration key %q in %s", key.String(), path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that all values are usable
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return &models.InspectError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf(format, args...),
		}
	}

	if c.MaxTags == 0 {
		return invalid("max_tags must be positive")
	}
	if c.MaxStoreSize == 0 {
		return invalid("max_store_size must be positive")
	}
	if c.Workers < 1 {
		return invalid("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxBinaryDump < 0 {
		return invalid("max_binary_dump must not be negative, got %d", c.MaxBinaryDump)
	}
	if _, err := c.Level(); err != nil {
		return invalid("%w", err)
	}
	return nil
}

// Level returns the configured log level
func (c Config) Level() (logrus.Level, error) {
	return logrus.ParseLevel(strings.TrimSpace(c.LogLevel))
}

// ParseOptions converts the decoder limits to rpm options
func (c Config) ParseOptions() []rpm.Option {
	return []rpm.Option{
		rpm.WithMaxTags(c.MaxTags),
		rpm.WithMaxStoreSize(c.MaxStoreSize),
	}
}
