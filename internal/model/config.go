package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends for the persisted session.
const (
	StorageKeyring = "keyring"
	StorageSQLite  = "sqlite"
)

// ServerConfig points the client at the webmail REST service.
type ServerConfig struct {
	// BaseURL is the root URL of the service (e.g., http://localhost:8080).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns the request timeout as a duration.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// StorageConfig selects where the session token and profile are kept.
type StorageConfig struct {
	// Backend is "keyring" (system credential store) or "sqlite".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the SQLite database file used by the sqlite backend.
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	// Locale is the BCP 47 tag used to collate archive group names.
	Locale string `mapstructure:"locale" yaml:"locale"`

	// RedirectDelayMS is how long the sign-in confirmation stays visible
	// before the mailbox opens.
	RedirectDelayMS int `mapstructure:"redirect_delay_ms" yaml:"redirect_delay_ms"`

	// ToastSec is how long a toast stays on screen.
	ToastSec int `mapstructure:"toast_sec" yaml:"toast_sec"`
}

// RedirectDelay returns the post-login redirect delay.
func (d DisplayConfig) RedirectDelay() time.Duration {
	return time.Duration(d.RedirectDelayMS) * time.Millisecond
}

// ToastDuration returns how long toasts are shown.
func (d DisplayConfig) ToastDuration() time.Duration {
	return time.Duration(d.ToastSec) * time.Second
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// configDir returns ~/.config/mailclient, or the working directory when
// the home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mailclient")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailclient/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultAppConfig returns the built-in configuration.
func DefaultAppConfig() *AppConfig {
	dir := configDir()
	return &AppConfig{
		Server: ServerConfig{
			BaseURL:    "http://localhost:8080",
			TimeoutSec: 30,
		},
		Storage: StorageConfig{
			Backend: StorageKeyring,
			Path:    filepath.Join(dir, "client.db"),
		},
		Log: LogConfig{
			Level:      "info",
			File:       filepath.Join(dir, "mailclient.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Display: DisplayConfig{
			Locale:          "en",
			RedirectDelayMS: 450,
			ToastSec:        3,
		},
	}
}

// setDefaults mirrors DefaultAppConfig into v so missing keys resolve.
func setDefaults(v *viper.Viper, d *AppConfig) {
	v.SetDefault("server.base_url", d.Server.BaseURL)
	v.SetDefault("server.timeout_sec", d.Server.TimeoutSec)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("display.locale", d.Display.Locale)
	v.SetDefault("display.redirect_delay_ms", d.Display.RedirectDelayMS)
	v.SetDefault("display.toast_sec", d.Display.ToastSec)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with MAILCLIENT_ override file values
// (e.g., MAILCLIENT_SERVER_BASE_URL). If the file does not exist, the
// defaults plus any environment overrides are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MAILCLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultAppConfig())

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the values that cannot be defaulted silently.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Server.BaseURL) == "" {
		return errors.New("server.base_url is required")
	}
	switch c.Storage.Backend {
	case StorageKeyring, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	if c.Server.TimeoutSec <= 0 {
		c.Server.TimeoutSec = 30
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("storage", cfg.Storage)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
