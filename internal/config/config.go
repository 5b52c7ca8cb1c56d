// Package config holds the shell's static configuration and on-disk paths.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// AppName is the window and tray title.
	AppName = "TeeworldsCN 管理系统"

	// AppID names the per-user config directory and the auto-launch entry.
	AppID = "admin-shell"

	// Version is shown as the first, disabled tray menu item.
	Version = "1.0"

	// DefaultRemoteURL is loaded when no override is set.
	DefaultRemoteURL = "https://teeworlds.cn/admin/tickets"
)

// Environment variables that override the remote URL, first match wins.
var remoteURLEnv = []string{"ADMIN_SHELL_URL", "DEV_URL"}

// File names
const (
	SettingsFileName = "settings.yaml"
	LogFileName      = "admin-shell.log"
)

// Config is the resolved runtime configuration.
type Config struct {
	RemoteURL string

	Width     int
	Height    int
	MinWidth  int
	MinHeight int

	// RestrictedPathSuffix marks the page that carries the logout control.
	RestrictedPathSuffix string
	// LogoutSelector locates the logout control on that page.
	LogoutSelector string

	Debug bool
}

// Default returns the built-in configuration with environment overrides applied.
func Default() *Config {
	cfg := &Config{
		RemoteURL:            DefaultRemoteURL,
		Width:                1152,
		Height:               648,
		MinWidth:             364,
		MinHeight:            648,
		RestrictedPathSuffix: "/ddnet/tickets",
		LogoutSelector:       `form[action="/login/logout"] button[type="submit"]`,
	}
	for _, key := range remoteURLEnv {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			cfg.RemoteURL = v
			break
		}
	}
	return cfg
}

// Validate checks that the remote URL is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.RemoteURL)
	if err != nil {
		return fmt.Errorf("invalid remote url %q: %w", c.RemoteURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("remote url %q must be http or https", c.RemoteURL)
	}
	if u.Host == "" {
		return fmt.Errorf("remote url %q has no host", c.RemoteURL)
	}
	return nil
}

// Dir returns the per-user configuration directory for the shell.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("failed to resolve config dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, AppID), nil
}

// SettingsFile returns the path of the persisted preferences file.
func SettingsFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// LogFile returns the path of the application log.
func LogFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogFileName), nil
}

// EnsureDir creates the configuration directory if needed.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
