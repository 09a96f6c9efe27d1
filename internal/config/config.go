// Package config loads scicalc settings from a file, the environment, and
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override settings,
// e.g. SCICALC_WEB_ADDR for web.addr.
const EnvPrefix = "SCICALC"

// Config is the complete configuration.
type Config struct {
	Calc    CalcConfig    `mapstructure:"calc"`
	UI      UIConfig      `mapstructure:"ui"`
	Web     WebConfig     `mapstructure:"web"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CalcConfig controls evaluation.
type CalcConfig struct {
	// Precision is the precision of arithmetic in bits.
	Precision uint `mapstructure:"precision"`
	// Digits is the number of significant digits shown in results.
	Digits int `mapstructure:"digits"`
	// Chain replaces the expression with its result after evaluation.
	Chain bool `mapstructure:"chain"`
}

// UIConfig controls both front ends.
type UIConfig struct {
	// Theme is the initial theme, "dark" or "light".
	Theme string `mapstructure:"theme"`
}

// WebConfig controls the web front end.
type WebConfig struct {
	// Addr is the listen address.
	Addr string `mapstructure:"addr"`
	// SessionTTL is how long a browser session may sit idle before it is
	// discarded.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	// SweepSchedule is the cron schedule for discarding idle sessions.
	SweepSchedule string `mapstructure:"sweep_schedule"`
}

// LoggingConfig controls logging.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `mapstructure:"level"`
	// Pretty selects human-readable console output instead of JSON.
	Pretty bool `mapstructure:"pretty"`
	// File, if set, receives logs in addition to the console.
	File string `mapstructure:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Calc: CalcConfig{
			Precision: 64,
			Digits:    15,
			Chain:     true,
		},
		UI: UIConfig{
			Theme: "dark",
		},
		Web: WebConfig{
			Addr:          "127.0.0.1:8080",
			SessionTTL:    30 * time.Minute,
			SweepSchedule: "@every 1m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("calc.precision", defaults.Calc.Precision)
	v.SetDefault("calc.digits", defaults.Calc.Digits)
	v.SetDefault("calc.chain", defaults.Calc.Chain)

	v.SetDefault("ui.theme", defaults.UI.Theme)

	v.SetDefault("web.addr", defaults.Web.Addr)
	v.SetDefault("web.session_ttl", defaults.Web.SessionTTL)
	v.SetDefault("web.sweep_schedule", defaults.Web.SweepSchedule)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.pretty", defaults.Logging.Pretty)
	v.SetDefault("logging.file", defaults.Logging.File)
}

// New creates a viper instance with defaults and environment overrides. If
// path is empty, the config file is looked up in Dir; it is fine for it not
// to exist. An explicit path must exist.
func New(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}
	return v
}

// Load reads the configuration at path, or the default file if path is
// empty, and validates it.
func Load(path string) (*Config, error) {
	return Read(New(path))
}

// Read reads and validates the configuration from v.
func Read(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Dir returns the directory searched for config.yaml.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scicalc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scicalc"
	}
	return filepath.Join(home, ".config", "scicalc")
}

// File returns the default config file path.
func File() string {
	return filepath.Join(Dir(), "config.yaml")
}
