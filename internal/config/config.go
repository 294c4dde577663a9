package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// AppName is used for the config directory and default file names
const AppName = "graphterm"

// Validation errors
var (
	ErrUnknownTheme = errors.New("unknown theme")
	ErrMissingURL   = errors.New("missing api url")
)

// API holds the remote endpoints of the learning platform
type API struct {
	// GraphQLURL is the single GraphQL endpoint every query is sent to
	GraphQLURL string `yaml:"graphql_url"`

	// SigninURL exchanges HTTP Basic credentials for a bearer token
	SigninURL string `yaml:"signin_url"`

	// Timeout bounds a single HTTP round trip (0 disables it)
	Timeout time.Duration `yaml:"timeout"`
}

// Session controls where the session is persisted and how long a
// successful validation is trusted
type Session struct {
	// Path is the YAML key/value file holding the session keys
	Path string `yaml:"path"`

	// ValidationWindow skips the remote identity check when the last
	// successful validation is younger than this
	ValidationWindow time.Duration `yaml:"validation_window"`
}

// Log configures the file logger (the terminal UI owns stdout)
type Log struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// Chart configures the text charts rendered by graphctl
type Chart struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Config holds the application configuration
type Config struct {
	// Theme is the catppuccin flavor to use (mocha, macchiato, frappe, latte)
	Theme string `yaml:"theme"`

	// Hostname is shown in the prompt as <user>@<hostname>~$
	Hostname string `yaml:"hostname"`

	API     API     `yaml:"api"`
	Session Session `yaml:"session"`
	Log     Log     `yaml:"log"`
	Chart   Chart   `yaml:"chart"`
}

// Dir returns the per-user config directory
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	return filepath.Join(os.Getenv("HOME"), ".config", AppName)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		Theme:    "mocha",
		Hostname: "hostname",
		API: API{
			GraphQLURL: "https://learn.zone01oujda.ma/api/graphql-engine/v1/graphql",
			SigninURL:  "https://learn.zone01oujda.ma/api/auth/signin",
			Timeout:    30 * time.Second,
		},
		Session: Session{
			Path:             filepath.Join(dir, "session.yaml"),
			ValidationWindow: 10 * time.Second,
		},
		Log: Log{
			Path:  filepath.Join(dir, AppName+".log"),
			Level: "info",
		},
		Chart: Chart{
			Width:  50,
			Height: 12,
		},
	}
}

// Load reads the config from a YAML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) //nolint:gosec // config path from known locations
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", cleanPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cleanPath, err)
	}

	return cfg, nil
}

// LoadFromDefaultPath attempts to load config from standard locations
func LoadFromDefaultPath() (*Config, error) {
	// Check in order: current dir, ~/.config/graphterm/, XDG_CONFIG_HOME
	paths := []string{
		"config.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", AppName, "config.yaml"),
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, AppName, "config.yaml"))
	}

	for _, path := range paths {
		cleanPath := filepath.Clean(path)
		if _, err := os.Stat(cleanPath); err == nil { //nolint:gosec // config path from known locations
			return Load(cleanPath)
		}
	}

	return DefaultConfig(), nil
}

// Validate checks the fields that have no sensible fallback
func (c *Config) Validate() error {
	if _, ok := flavors[c.Theme]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, c.Theme)
	}
	if c.API.GraphQLURL == "" {
		return fmt.Errorf("%w: graphql_url", ErrMissingURL)
	}
	if c.API.SigninURL == "" {
		return fmt.Errorf("%w: signin_url", ErrMissingURL)
	}
	if c.Chart.Width < 10 {
		c.Chart.Width = 10
	}
	if c.Chart.Height < 4 {
		c.Chart.Height = 4
	}
	return nil
}
