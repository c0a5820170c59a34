// Copyright © 2024 The NRefactory authors

// Package config loads nrlint settings from .nrlint.yaml, NRLINT_*
// environment variables and command-line flags through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ezhangle/NRefactory/lint"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Name is the base name of the configuration file, without extension.
const Name = ".nrlint"

// EnvPrefix prefixes every environment variable read by nrlint.
const EnvPrefix = "NRLINT"

// Viper keys.
const (
	KeyRules    = "rules"
	KeyExclude  = "exclude"
	KeyJobs     = "jobs"
	KeyTimeout  = "timeout"
	KeyCacheDir = "cache-dir"
	KeyNoCache  = "no-cache"
	KeyColor    = "color"
	KeyLogLevel = "log-level"
)

// RuleOff disables a rule in the rules map.
const RuleOff = "off"

// Config is the decoded nrlint configuration.
type Config struct {
	// Rules maps a rule id or name to "off", "info" or "warning".
	Rules map[string]string `mapstructure:"rules"`

	// Exclude holds doublestar patterns of paths never linted.
	Exclude []string `mapstructure:"exclude"`

	// Jobs bounds the number of files linted concurrently; 0 means
	// GOMAXPROCS.
	Jobs int `mapstructure:"jobs"`

	// Timeout bounds a whole lint run; 0 means no limit.
	Timeout time.Duration `mapstructure:"timeout"`

	CacheDir string `mapstructure:"cache-dir"`
	NoCache  bool   `mapstructure:"no-cache"`
	Color    string `mapstructure:"color"`
	LogLevel string `mapstructure:"log-level"`
}

// SetDefaults installs the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyJobs, 0)
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeyColor, "auto")
	v.SetDefault(KeyLogLevel, "warning")
	v.SetDefault(KeyNoCache, false)
	v.SetDefault(KeyCacheDir, "")
	v.SetDefault(KeyExclude, []string{})
}

// New returns a viper instance with defaults and environment binding set
// up. NRLINT_CACHE_DIR maps to cache-dir.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadIn reads cfgFile into v, or searches for .nrlint.{yaml,yml,json,toml}
// in the working directory and then the home directory. A missing file is
// not an error when no explicit path was given.
func ReadIn(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(Name)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && cfgFile == "" && errors.As(err, &notFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// lookupRule resolves a rules key. Viper lowercases map keys, so ids are
// retried in upper case.
func lookupRule(key string) (*lint.Descriptor, bool) {
	if d, ok := lint.DefaultCatalog.Lookup(key); ok {
		return d, true
	}
	return lint.DefaultCatalog.Lookup(strings.ToUpper(key))
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	for id, setting := range c.Rules {
		if _, ok := lookupRule(id); !ok {
			return fmt.Errorf("%s: unknown rule %q", KeyRules, id)
		}
		if setting == RuleOff {
			continue
		}
		if _, err := lint.ParseSeverity(setting); err != nil {
			return fmt.Errorf("%s.%s: %w", KeyRules, id, err)
		}
	}
	if c.Jobs < 0 {
		return fmt.Errorf("%s: must not be negative", KeyJobs)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%s: must not be negative", KeyTimeout)
	}
	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("%s: want auto, always or never, got %q", KeyColor, c.Color)
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("%s: %w", KeyLogLevel, err)
		}
	}
	return nil
}

// Level returns the configured log level, warning when unset.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}

// ConfigureRules drops the rules turned off in c and returns the severity
// overrides, keyed by rule id, for the rest.
func (c *Config) ConfigureRules(rules []lint.Rule) ([]lint.Rule, map[string]lint.Severity) {
	settings := make(map[string]string, len(c.Rules))
	for key, setting := range c.Rules {
		if desc, ok := lookupRule(key); ok {
			settings[desc.ID] = setting
		}
	}
	severity := make(map[string]lint.Severity)
	var out []lint.Rule
	for _, r := range rules {
		id := r.Descriptor().ID
		setting, ok := settings[id]
		if setting == RuleOff {
			continue
		}
		out = append(out, r)
		if ok {
			if sev, err := lint.ParseSeverity(setting); err == nil {
				severity[id] = sev
			}
		}
	}
	return out, severity
}
