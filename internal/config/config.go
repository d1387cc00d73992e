// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultInitialTheme    = "default"
	DefaultLinkID          = "theme-stylesheet"
	DefaultBaseHref        = "/themes/"
	DefaultListen          = "127.0.0.1:8080"
	DefaultHTTPTimeout     = Duration(10 * time.Second)
	DefaultShutdownTimeout = Duration(5 * time.Second)
)

// Mode selects how the header and footer sets reach the store.
type Mode string

const (
	// ModeFetch resolves the sets in the background after mount.
	ModeFetch Mode = "fetch"
	// ModeStatic resolves the sets before the store is created.
	ModeStatic Mode = "static"
)

// ValidModes returns all valid mode values.
func ValidModes() []Mode {
	return []Mode{ModeFetch, ModeStatic}
}

// Source selects where header and footer markup comes from.
type Source string

const (
	SourceEmbedded Source = "embedded"
	SourceDir      Source = "dir"
	SourceHTTP     Source = "http"
)

// ValidSources returns all valid source values.
func ValidSources() []Source {
	return []Source{SourceEmbedded, SourceDir, SourceHTTP}
}

// Config represents the themekit configuration.
type Config struct {
	Theme      ThemeConfig      `toml:"theme"`
	Stylesheet StylesheetConfig `toml:"stylesheet"`
	Variants   VariantsConfig   `toml:"variants"`
	Server     ServerConfig     `toml:"server"`
	Clipboard  ClipboardConfig  `toml:"clipboard"`
}

// ThemeConfig holds the theme list and initial selection.
type ThemeConfig struct {
	Initial string   `toml:"initial"`
	Themes  []string `toml:"themes"` // Empty = every theme in the catalog
	Dir     string   `toml:"dir"`    // User themes directory; empty = XDG default
}

// StylesheetConfig holds the tagged <link> settings.
type StylesheetConfig struct {
	LinkID   string `toml:"link_id"`
	BaseHref string `toml:"base_href"`
}

// VariantsConfig holds header and footer retrieval settings.
type VariantsConfig struct {
	Mode    Mode     `toml:"mode"`
	Source  Source   `toml:"source"`
	Headers string   `toml:"headers"` // Directory or URL, per source
	Footers string   `toml:"footers"`
	Strict  bool     `toml:"strict"`
	Timeout Duration `toml:"http_timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen          string   `toml:"listen"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// ClipboardConfig holds the clipboard command used by the TUI.
type ClipboardConfig struct {
	Command string `toml:"command"` // Empty = auto-detect (wl-copy, xclip, xsel)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Theme: ThemeConfig{
			Initial: DefaultInitialTheme,
		},
		Stylesheet: StylesheetConfig{
			LinkID:   DefaultLinkID,
			BaseHref: DefaultBaseHref,
		},
		Variants: VariantsConfig{
			Mode:    ModeFetch,
			Source:  SourceEmbedded,
			Timeout: DefaultHTTPTimeout,
		},
		Server: ServerConfig{
			Listen:          DefaultListen,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "themekit", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Theme.Dir = expandPath(cfg.Theme.Dir)
	if cfg.Variants.Source == SourceDir {
		cfg.Variants.Headers = expandPath(cfg.Variants.Headers)
		cfg.Variants.Footers = expandPath(cfg.Variants.Footers)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Theme.Initial) == "" {
		return errors.New("theme.initial cannot be empty")
	}
	if slices.Contains(c.Theme.Themes, "") {
		return errors.New("theme.themes cannot contain an empty name")
	}

	if strings.TrimSpace(c.Stylesheet.LinkID) == "" {
		return errors.New("stylesheet.link_id cannot be empty")
	}

	if !slices.Contains(ValidModes(), c.Variants.Mode) {
		return fmt.Errorf("invalid variants.mode %q, must be one of: %v", c.Variants.Mode, ValidModes())
	}
	if !slices.Contains(ValidSources(), c.Variants.Source) {
		return fmt.Errorf("invalid variants.source %q, must be one of: %v", c.Variants.Source, ValidSources())
	}
	if c.Variants.Source != SourceEmbedded && (c.Variants.Headers == "" || c.Variants.Footers == "") {
		return fmt.Errorf("variants.headers and variants.footers are required for source %q", c.Variants.Source)
	}
	if c.Variants.Timeout < 0 {
		return fmt.Errorf("variants.http_timeout cannot be negative, got %s", c.Variants.Timeout.Duration())
	}

	if c.Server.Listen == "" {
		return errors.New("server.listen cannot be empty")
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
