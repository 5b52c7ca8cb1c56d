//go:build linux

package autolaunch

import (
	"fmt"
	"os"
	"path/filepath"
)

// New returns a launcher backed by an XDG autostart entry.
func New(name string) (Launcher, error) {
	exe, err := Executable()
	if err != nil {
		return nil, err
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return newDesktopEntryLauncher(filepath.Join(dir, "autostart", name+".desktop"), name, exe), nil
}
