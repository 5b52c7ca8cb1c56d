//go:build darwin

package autolaunch

import (
	"fmt"
	"os"
	"path/filepath"
)

// New returns a launcher backed by a per-user LaunchAgent.
func New(name string) (Launcher, error) {
	exe, err := Executable()
	if err != nil {
		return nil, err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	label := "cn.teeworlds." + name
	path := filepath.Join(home, "Library", "LaunchAgents", label+".plist")
	return newLaunchAgentLauncher(path, label, exe), nil
}
