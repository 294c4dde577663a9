package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	catppuccin "github.com/catppuccin/go"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Theme != "mocha" {
		t.Errorf("expected default theme mocha, got %q", cfg.Theme)
	}
	if cfg.Hostname != "hostname" {
		t.Errorf("expected default hostname 'hostname', got %q", cfg.Hostname)
	}
	if cfg.Session.ValidationWindow != 10*time.Second {
		t.Errorf("expected 10s validation window, got %v", cfg.Session.ValidationWindow)
	}
	if cfg.API.GraphQLURL == "" || cfg.API.SigninURL == "" {
		t.Error("DefaultConfig should have both API endpoints")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `theme: latte
hostname: zone01
api:
  graphql_url: http://localhost:8080/graphql
session:
  validation_window: 2h
chart:
  width: 70
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Theme != "latte" {
		t.Errorf("Expected theme latte, got %q", cfg.Theme)
	}
	if cfg.Hostname != "zone01" {
		t.Errorf("Expected hostname zone01, got %q", cfg.Hostname)
	}
	if cfg.API.GraphQLURL != "http://localhost:8080/graphql" {
		t.Errorf("Expected overridden graphql url, got %q", cfg.API.GraphQLURL)
	}
	// Fields not in the file keep their defaults
	if cfg.API.SigninURL != DefaultConfig().API.SigninURL {
		t.Errorf("Expected default signin url, got %q", cfg.API.SigninURL)
	}
	if cfg.Session.ValidationWindow != 2*time.Hour {
		t.Errorf("Expected 2h window, got %v", cfg.Session.ValidationWindow)
	}
	if cfg.Chart.Width != 70 {
		t.Errorf("Expected chart width 70, got %d", cfg.Chart.Width)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("Load() should not error for missing file, got: %v", err)
	}
	if cfg.Theme != "mocha" {
		t.Error("Should return default config")
	}
}

func TestLoadRejectsUnknownTheme(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("theme: solarized\n"), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load() should reject an unknown theme")
	}
}

func TestPalette(t *testing.T) {
	tests := []struct {
		theme  string
		accent string
	}{
		{"mocha", catppuccin.Mocha.Mauve().Hex},
		{"latte", catppuccin.Latte.Mauve().Hex},
		{"frappe", catppuccin.Frappe.Mauve().Hex},
		{"bogus", catppuccin.Mocha.Mauve().Hex},
	}

	for _, tt := range tests {
		t.Run(tt.theme, func(t *testing.T) {
			cfg := &Config{Theme: tt.theme}
			if got := cfg.Palette().Accent; got != tt.accent {
				t.Errorf("Palette(%q).Accent = %q, want %q", tt.theme, got, tt.accent)
			}
		})
	}
}
