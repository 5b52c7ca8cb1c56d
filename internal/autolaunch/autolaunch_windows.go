//go:build windows

package autolaunch

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const runKey = `SOFTWARE\Microsoft\Windows\CurrentVersion\Run`

type registryLauncher struct {
	name string
	exe  string
}

// New returns the launcher for the current user's Run key.
func New(name string) (Launcher, error) {
	exe, err := Executable()
	if err != nil {
		return nil, err
	}
	return &registryLauncher{name: name, exe: exe}, nil
}

func (l *registryLauncher) command() string {
	return fmt.Sprintf(`"%s" --minimized`, l.exe)
}

func (l *registryLauncher) IsEnabled() (bool, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.QUERY_VALUE)
	if err != nil {
		return false, fmt.Errorf("failed to open registry: %w", err)
	}
	defer key.Close()

	value, _, err := key.GetStringValue(l.name)
	if errors.Is(err, registry.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read startup entry: %w", err)
	}
	return value == l.command(), nil
}

func (l *registryLauncher) Enable() error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer key.Close()

	if err := key.SetStringValue(l.name, l.command()); err != nil {
		return fmt.Errorf("failed to set startup entry: %w", err)
	}
	return nil
}

func (l *registryLauncher) Disable() error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer key.Close()

	err = key.DeleteValue(l.name)
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("failed to delete startup entry: %w", err)
	}
	return nil
}
