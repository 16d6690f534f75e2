// Package config handles the XDG configuration directory, config.toml and file paths.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the application directory name.
	AppName = "kanori"

	// SettingsFile is the user-editable settings filename.
	SettingsFile = "config.toml"

	// CredentialsFile is the stored access/refresh token filename.
	CredentialsFile = "credentials.json"

	// FocusStateFile holds the focus tracker state between invocations.
	FocusStateFile = "focus.json"

	// DayBoundsFile holds the local wake/sleep bounds.
	DayBoundsFile = "day_bounds.json"

	// GoogleClientFile is the Google OAuth client credentials filename.
	GoogleClientFile = "oauth_client.json"

	// GoogleTokenFile is the stored Google OAuth token filename.
	GoogleTokenFile = "google_token.json"

	// DefaultAPIBase is used when neither config.toml nor the environment set one.
	DefaultAPIBase = "http://localhost:8000/api"

	// DefaultTimeout bounds a single backend call.
	DefaultTimeout = 10 * time.Second

	// APIBaseEnv overrides api_base from config.toml.
	APIBaseEnv = "KANORI_API_BASE"
)

// ErrInvalidSettings is returned when config.toml cannot be used.
var ErrInvalidSettings = errors.New("invalid config.toml")

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings is the decoded config.toml, with defaults applied.
	Settings Settings

	// Logger receives debug logs; nil discards them.
	Logger *slog.Logger
}

// Log returns the configured logger, or one that discards everything.
func (c *Config) Log() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// Settings mirrors config.toml.
type Settings struct {
	APIBase string       `toml:"api_base"`
	Timeout duration     `toml:"timeout"`
	Columns ColumnColors `toml:"columns"`
}

// ColumnColors are the default lane colors shown when the user has not picked one.
type ColumnColors struct {
	Todo  string `toml:"todo"`
	Doing string `toml:"doing"`
	Today string `toml:"today"`
	Done  string `toml:"done"`
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultSettings returns the settings used when config.toml is absent.
func DefaultSettings() Settings {
	return Settings{
		APIBase: DefaultAPIBase,
		Timeout: duration{DefaultTimeout},
		Columns: ColumnColors{
			Todo:  "#8b949e",
			Doing: "#d29922",
			Today: "#58a6ff",
			Done:  "#3fb950",
		},
	}
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/kanori or $HOME/.config/kanori.
// Settings are loaded from config.toml in that directory.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	settings, err := LoadSettings(cfg.SettingsPath())
	if err != nil {
		return nil, err
	}
	cfg.Settings = settings
	return cfg, nil
}

// LoadSettings decodes the settings file at path on top of the defaults.
// A missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Settings{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err == nil {
		if _, err := toml.Decode(string(data), &settings); err != nil {
			return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
	}

	if env := os.Getenv(APIBaseEnv); env != "" {
		settings.APIBase = env
	}
	if settings.APIBase == "" {
		settings.APIBase = DefaultAPIBase
	}
	if settings.Timeout.Duration <= 0 {
		settings.Timeout.Duration = DefaultTimeout
	}
	return settings, nil
}

// APIBase returns the backend base URL.
func (c *Config) APIBase() string {
	if c.Settings.APIBase == "" {
		return DefaultAPIBase
	}
	return c.Settings.APIBase
}

// Timeout returns the per-call timeout.
func (c *Config) Timeout() time.Duration {
	if c.Settings.Timeout.Duration <= 0 {
		return DefaultTimeout
	}
	return c.Settings.Timeout.Duration
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to config.toml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// CredentialsPath returns the path to the stored token pair.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Dir, CredentialsFile)
}

// FocusStatePath returns the path to the focus tracker state.
func (c *Config) FocusStatePath() string {
	return filepath.Join(c.Dir, FocusStateFile)
}

// DayBoundsPath returns the path to the local day bounds.
func (c *Config) DayBoundsPath() string {
	return filepath.Join(c.Dir, DayBoundsFile)
}

// GoogleClientPath returns the path to the Google OAuth client credentials file.
func (c *Config) GoogleClientPath() string {
	return filepath.Join(c.Dir, GoogleClientFile)
}

// GoogleTokenPath returns the path to the stored Google OAuth token.
func (c *Config) GoogleTokenPath() string {
	return filepath.Join(c.Dir, GoogleTokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasCredentials checks if the credentials file exists.
func (c *Config) HasCredentials() bool {
	_, err := os.Stat(c.CredentialsPath())
	return err == nil
}

// HasGoogleClient checks if the Google OAuth client file exists.
func (c *Config) HasGoogleClient() bool {
	_, err := os.Stat(c.GoogleClientPath())
	return err == nil
}

// HasGoogleToken checks if the Google token file exists.
func (c *Config) HasGoogleToken() bool {
	_, err := os.Stat(c.GoogleTokenPath())
	return err == nil
}
