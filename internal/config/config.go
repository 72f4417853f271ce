// Package config loads nextaction settings from defaults, ~/.nextaction/config.json,
// NEXTACTION_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/example/nextaction/internal/core/zone"
)

// EnvPrefix is prepended to every environment variable, e.g. NEXTACTION_DB_PATH.
const EnvPrefix = "NEXTACTION"

// FileName is the config file kept in the config directory.
const FileName = "config.json"

// Config is the resolved configuration.
type Config struct {
	DBPath     string           `mapstructure:"db_path"`
	Timezone   string           `mapstructure:"timezone"`
	LogLevel   string           `mapstructure:"log_level"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Sweeper    SweeperConfig    `mapstructure:"sweeper"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Recurrence RecurrenceConfig `mapstructure:"recurrence"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type SweeperConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type CacheConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

type RecurrenceConfig struct {
	HorizonYears int `mapstructure:"horizon_years"`
}

// defaults holds every settable key. db_path is resolved against the config
// directory when left empty.
var defaults = map[string]any{
	"db_path":                  "",
	"timezone":                 "UTC",
	"log_level":                "info",
	"http.addr":                "127.0.0.1:8460",
	"sweeper.interval":         "30m",
	"cache.max_entries":        256,
	"recurrence.horizon_years": 30,
}

// Keys lists the settable configuration keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsKey reports whether key is a known configuration key.
func IsKey(key string) bool {
	_, ok := defaults[key]
	return ok
}

// Dir returns ~/.nextaction.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".nextaction"), nil
}

// NewViper returns a viper instance with defaults, the config file in dir
// and environment overrides registered. Flags are bound by the caller.
func NewViper(dir string) *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.SetConfigType("json")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file if there is one and resolves the settings.
func Load(v *viper.Viper, dir string) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(dir, "nextaction.db")
	}
	cfg.DBPath = expandHome(cfg.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if !zone.IsValidTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Sweeper.Interval <= 0 {
		return fmt.Errorf("sweeper.interval must be positive, got %s", c.Sweeper.Interval)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries cannot be negative")
	}
	if c.Recurrence.HorizonYears <= 0 {
		return fmt.Errorf("recurrence.horizon_years must be positive, got %d", c.Recurrence.HorizonYears)
	}
	return nil
}

// Horizon converts recurrence.horizon_years to a duration.
func (c *Config) Horizon() time.Duration {
	return time.Duration(c.Recurrence.HorizonYears) * 366 * 24 * time.Hour
}

// ParseLogLevel accepts debug, info, warn and error in any case.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// Save sets key to value in dir/config.json, leaving other stored keys alone.
// Defaults and environment overrides are not written.
func Save(dir, key, value string) error {
	if !IsKey(key) {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	v.Set(key, value)

	// Reject values Load would refuse before they reach disk.
	check := NewViper(dir)
	if err := check.MergeConfigMap(v.AllSettings()); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	var cfg Config
	if err := check.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
