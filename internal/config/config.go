// Package config handles the XDG configuration directory and settings file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "labposts"

	// SettingsName is the settings file name without extension.
	SettingsName = "config"

	// EnvPrefix prefixes environment overrides, e.g. LABPOSTS_BASE_URL.
	EnvPrefix = "LABPOSTS"
)

// Item sources.
const (
	SourceRemote = "remote"
	SourceSeed   = "seed"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Settings Settings
}

// Settings are read from <Dir>/config.yaml and LABPOSTS_* variables.
type Settings struct {
	BaseURL           string         `mapstructure:"base_url"`
	Timeout           time.Duration  `mapstructure:"timeout"`
	ListLimit         int            `mapstructure:"list_limit"`
	Source            string         `mapstructure:"source"`
	SeedLatency       time.Duration  `mapstructure:"seed_latency"`
	RateLimit         float64        `mapstructure:"rate_limit"`
	PreserveCompleted bool           `mapstructure:"preserve_completed"`
	LogFile           string         `mapstructure:"log_file"`
	Server            ServerSettings `mapstructure:"server"`
}

// ServerSettings configure the stand-in posts server.
type ServerSettings struct {
	Addr string `mapstructure:"addr"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/labposts or $HOME/.config/labposts.
// Settings hold defaults until Load is called.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir, Settings: DefaultSettings()}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		BaseURL:   "https://jsonplaceholder.typicode.com",
		Timeout:   10 * time.Second,
		ListLimit: 10,
		Source:    SourceRemote,
		RateLimit: 5,
		Server:    ServerSettings{Addr: "localhost:3000"},
	}
}

// SettingsPath returns the path to the settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsName+".yaml")
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// Load reads the settings file and environment overrides into c.Settings.
// A missing settings file is not an error.
func (c *Config) Load() error {
	v := viper.New()
	v.SetConfigName(SettingsName)
	v.SetConfigType("yaml")
	v.AddConfigPath(c.Dir)

	d := DefaultSettings()
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("list_limit", d.ListLimit)
	v.SetDefault("source", d.Source)
	v.SetDefault("seed_latency", d.SeedLatency)
	v.SetDefault("rate_limit", d.RateLimit)
	v.SetDefault("preserve_completed", d.PreserveCompleted)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("server.addr", d.Server.Addr)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading %s: %w", c.SettingsPath(), err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return fmt.Errorf("decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	c.Settings = s
	return nil
}

// Validate checks the settings for values no component can work with.
func (s Settings) Validate() error {
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	if s.ListLimit <= 0 {
		return fmt.Errorf("list_limit must be positive, got %d", s.ListLimit)
	}
	if s.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %g", s.RateLimit)
	}
	if s.SeedLatency < 0 {
		return fmt.Errorf("seed_latency must not be negative, got %s", s.SeedLatency)
	}
	switch s.Source {
	case SourceRemote, SourceSeed:
	default:
		return fmt.Errorf("unknown source %q (want %s or %s)", s.Source, SourceRemote, SourceSeed)
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("malformed base_url %q", s.BaseURL)
	}
	return nil
}
