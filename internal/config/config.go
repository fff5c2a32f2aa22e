// Package config loads urlbench settings from defaults, an optional YAML
// file, URLBENCH_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "urlbench"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "urlbench"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "URLBENCH"
)

// Keys, shared with the flag names of the CLI.
const (
	KeyMinSamples        = "min-samples"
	KeyMaxAttemptsFactor = "max-attempts-factor"
	KeyWarmup            = "warmup"
	KeySuites            = "suite"
	KeyNoColor           = "no-color"
	KeyVerbose           = "verbose"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	MinSamples        int
	MaxAttemptsFactor int
	Warmup            int
	Suites            []string
	NoColor           bool
	Verbose           bool
}

// DefaultConfig collects 1000 samples per case after 10 warmup runs.
func DefaultConfig() Config {
	return Config{
		MinSamples:        1000,
		MaxAttemptsFactor: 10,
		Warmup:            10,
	}
}

type LoadOptions struct {
	// ConfigFilePath is used exclusively when set; it must exist.
	ConfigFilePath string
	// Flags are bound so that explicitly set flags win over everything else.
	Flags *pflag.FlagSet
}

// Load resolves the configuration. Precedence: flag > env > file > default.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault(KeyMinSamples, defaults.MinSamples)
	v.SetDefault(KeyMaxAttemptsFactor, defaults.MaxAttemptsFactor)
	v.SetDefault(KeyWarmup, defaults.Warmup)
	v.SetDefault(KeySuites, defaults.Suites)
	v.SetDefault(KeyNoColor, defaults.NoColor)
	v.SetDefault(KeyVerbose, defaults.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFilePath != "" {
		if _, err := os.Stat(opts.ConfigFilePath); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", opts.ConfigFilePath, err)
		}
		v.SetConfigFile(opts.ConfigFilePath)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFilePath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if opts.Flags != nil {
		if err := v.BindPFlags(opts.Flags); err != nil {
			return Config{}, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	cfg := Config{
		MinSamples:        v.GetInt(KeyMinSamples),
		MaxAttemptsFactor: v.GetInt(KeyMaxAttemptsFactor),
		Warmup:            v.GetInt(KeyWarmup),
		Suites:            v.GetStringSlice(KeySuites),
		NoColor:           v.GetBool(KeyNoColor),
		Verbose:           v.GetBool(KeyVerbose),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.MinSamples < 0:
		return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidConfig, KeyMinSamples, c.MinSamples)
	case c.MaxAttemptsFactor < 1:
		return fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalidConfig, KeyMaxAttemptsFactor, c.MaxAttemptsFactor)
	case c.Warmup < 0:
		return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidConfig, KeyWarmup, c.Warmup)
	}
	return nil
}
