// Package config loads engine and command line settings through viper.
//
// Sources are consulted in priority order: bound flags, JSCORE_ environment
// variables, a jscore.{yaml,toml,json} file, then defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName names the config file and the user config directory.
	AppName = "jscore"
	// EnvPrefix prefixes environment overrides, e.g. JSCORE_STRICT.
	EnvPrefix = "JSCORE"
)

// Keys understood by Load.
const (
	KeyStrict       = "strict"
	KeyMaxCallDepth = "max_call_depth"
	KeyLogLevel     = "log_level"
	KeyColor        = "color"
	KeyHistoryFile  = "history_file"
)

// Config holds engine settings.
type Config struct {
	// Strict evaluates every program as strict mode code.
	Strict bool `mapstructure:"strict"`
	// MaxCallDepth bounds nested function calls. Exceeding it aborts
	// evaluation with a host-fatal stack overflow.
	MaxCallDepth int `mapstructure:"max_call_depth"`
	// LogLevel is a charmbracelet/log level name.
	LogLevel string `mapstructure:"log_level"`
	// Color enables styled error output in the CLI.
	Color bool `mapstructure:"color"`
	// HistoryFile is where the REPL keeps its line history. Empty disables
	// persistence.
	HistoryFile string `mapstructure:"history_file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		MaxCallDepth: 512,
		LogLevel:     "warn",
		Color:        true,
	}
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// File is an explicit config file. It must exist when set.
	File string
	// Dirs are searched for jscore.* when File is empty. Nil means the
	// working directory and the user config directory.
	Dirs []string
	// Flags maps config keys to command line flags. A flag only overrides
	// the other sources when it was set explicitly.
	Flags map[string]*pflag.Flag
}

// Load resolves a Config from opts. It returns the path of the config
// file that was read, or "" when none was found.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()
	d := Default()
	v.SetDefault(KeyStrict, d.Strict)
	v.SetDefault(KeyMaxCallDepth, d.MaxCallDepth)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyColor, d.Color)
	v.SetDefault(KeyHistoryFile, d.HistoryFile)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, "", fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}

	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return nil, "", fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(AppName)
		dirs := opts.Dirs
		if dirs == nil {
			dirs = defaultDirs()
		}
		for _, dir := range dirs {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, v.ConfigFileUsed(), nil
}

func defaultDirs() []string {
	dirs := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, AppName))
	}
	return dirs
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.MaxCallDepth <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyMaxCallDepth, c.MaxCallDepth)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	return nil
}
