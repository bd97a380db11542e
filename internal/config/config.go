// Package config handles datacube client configuration.
//
// Values come from an optional TOML file; command-line flags override them.
//
//	endpoint = "https://ows.rasdaman.org/rasdaman/ows"
//	timeout = "30s"
//	insecure = false
//	history = "~/.local/share/datacube/history.db"
//	log_level = "info"
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultEndpoint is the public rasdaman demo server.
const DefaultEndpoint = "https://ows.rasdaman.org/rasdaman/ows"

// DefaultTimeout bounds one query round-trip.
const DefaultTimeout = 60 * time.Second

// Config is the client configuration.
type Config struct {
	// Endpoint is the WCPS server URL queries are posted to.
	Endpoint string `toml:"endpoint"`

	// Timeout bounds one request.
	Timeout Duration `toml:"timeout"`

	// Insecure disables TLS certificate verification.
	Insecure bool `toml:"insecure"`

	// History is the SQLite execution history path. Empty disables history.
	History string `toml:"history"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// Duration is a time.Duration read from a TOML string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endpoint: DefaultEndpoint,
		Timeout:  Duration{DefaultTimeout},
		LogLevel: "info",
	}
}

// Load reads the file at path over the defaults. A missing file at the
// default location is not an error; an explicitly named missing file is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.History = expandHome(cfg.History)
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured slog level, Info when unset or invalid.
func (c *Config) Level() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be debug, info, warn or error", name)
	}
}

// DefaultPath returns ~/.config/datacube/config.toml, falling back to the
// OS config directory.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "datacube", "config.toml")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "datacube", "config.toml")
	}
	return "config.toml"
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
