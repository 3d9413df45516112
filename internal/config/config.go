package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Iron-Ham/qanotes/internal/logging"
	"github.com/Iron-Ham/qanotes/internal/tickets"
	"github.com/spf13/viper"
)

// Config represents the complete qanotes configuration
type Config struct {
	Render  RenderConfig  `mapstructure:"render"`
	Tickets TicketsConfig `mapstructure:"tickets"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// RenderConfig controls page rendering
type RenderConfig struct {
	// MaxReleases is how many releases, newest first, appear on a page (default: 5)
	MaxReleases int `mapstructure:"max_releases"`
	// Locale selects which localized text is rendered (default: "en-US")
	Locale string `mapstructure:"locale"`
	// Timestamp includes the "built on" time in the page header. Disable for
	// byte-for-byte reproducible output. (default: true)
	Timestamp bool `mapstructure:"timestamp"`
}

// TicketsConfig controls how ticket URLs become badge text
type TicketsConfig struct {
	// Rules are tried before the built-in GitHub, GitLab and Jira rules
	Rules []tickets.Rule `mapstructure:"rules"`
	// Strict fails the render on a URL no rule recognizes. When false the
	// URL itself is shown. (default: true)
	Strict bool `mapstructure:"strict"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled turns on logging (default: false, logs are discarded)
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is where qanotes.log is written; empty logs to stderr
	Dir string `mapstructure:"dir"`
	// MaxSizeMB is the log file size that triggers rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is how many rotated log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// OutputConfig controls where rendered pages are written
type OutputConfig struct {
	// Dir receives pages for inputs without an explicit --output; empty means
	// next to each input database
	Dir string `mapstructure:"dir"`
	// Suffix replaces the input's extension to form the output name (default: ".html")
	Suffix string `mapstructure:"suffix"`
}

// Rotation returns the logging rotation settings.
func (c *LoggingConfig) Rotation() logging.RotationConfig {
	return logging.RotationConfig{MaxSizeMB: c.MaxSizeMB, MaxBackups: c.MaxBackups}
}

// OutputPath returns the page path for an input database path.
func (c *OutputConfig) OutputPath(input string) string {
	suffix := c.Suffix
	if suffix == "" {
		suffix = ".html"
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + suffix
	if c.Dir != "" {
		return filepath.Join(c.Dir, base)
	}
	return filepath.Join(filepath.Dir(input), base)
}

// Default returns a Config with sensible default values
func Default() *Config {
	rotation := logging.DefaultRotationConfig()
	return &Config{
		Render: RenderConfig{
			MaxReleases: 5,
			Locale:      "en-US",
			Timestamp:   true,
		},
		Tickets: TicketsConfig{
			Rules:  []tickets.Rule{},
			Strict: true,
		},
		Logging: LoggingConfig{
			Enabled:    false,
			Level:      "info",
			MaxSizeMB:  rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
		},
		Output: OutputConfig{
			Suffix: ".html",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Render defaults
	viper.SetDefault("render.max_releases", defaults.Render.MaxReleases)
	viper.SetDefault("render.locale", defaults.Render.Locale)
	viper.SetDefault("render.timestamp", defaults.Render.Timestamp)

	// Ticket defaults
	viper.SetDefault("tickets.rules", defaults.Tickets.Rules)
	viper.SetDefault("tickets.strict", defaults.Tickets.Strict)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	// Output defaults
	viper.SetDefault("output.dir", defaults.Output.Dir)
	viper.SetDefault("output.suffix", defaults.Output.Suffix)
}

// Load reads the configuration from viper and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "qanotes")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".qanotes"
	}
	return filepath.Join(home, ".config", "qanotes")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
