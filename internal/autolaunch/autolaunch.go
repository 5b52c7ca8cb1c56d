// Package autolaunch registers the shell as a login item.
package autolaunch

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"howett.net/plist"
)

// ErrUnsupported is returned on platforms without a login-item mechanism.
var ErrUnsupported = errors.New("auto-launch is not supported on this platform")

// Launcher enables, disables and queries the login-item registration.
// Every call may fail; callers must not assume state after a failed call.
type Launcher interface {
	IsEnabled() (bool, error)
	Enable() error
	Disable() error
}

// Executable returns the path to register, with symlinks resolved.
func Executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get program path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}

// fileLauncher registers by writing a single file the OS scans at login.
type fileLauncher struct {
	path   string
	render func() ([]byte, error)
	// owns reports whether an existing file points at our executable.
	owns func(data []byte) bool
}

func (l *fileLauncher) IsEnabled() (bool, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", l.path, err)
	}
	return l.owns(data), nil
}

func (l *fileLauncher) Enable() error {
	data, err := l.render()
	if err != nil {
		return err
	}
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", l.path, err)
	}
	return nil
}

func (l *fileLauncher) Disable() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", l.path, err)
	}
	return nil
}

// launchAgent is the subset of a launchd job definition we write.
type launchAgent struct {
	Label            string   `plist:"Label"`
	ProgramArguments []string `plist:"ProgramArguments"`
	RunAtLoad        bool     `plist:"RunAtLoad"`
	ProcessType      string   `plist:"ProcessType,omitempty"`
}

func newLaunchAgentLauncher(path, label, exe string) *fileLauncher {
	return &fileLauncher{
		path: path,
		render: func() ([]byte, error) {
			data, err := plist.MarshalIndent(launchAgent{
				Label:            label,
				ProgramArguments: []string{exe, "--minimized"},
				RunAtLoad:        true,
				ProcessType:      "Interactive",
			}, plist.XMLFormat, "\t")
			if err != nil {
				return nil, fmt.Errorf("failed to encode launch agent: %w", err)
			}
			return data, nil
		},
		owns: func(data []byte) bool {
			var job launchAgent
			if _, err := plist.Unmarshal(data, &job); err != nil {
				return false
			}
			return job.Label == label && len(job.ProgramArguments) > 0 && job.ProgramArguments[0] == exe
		},
	}
}

func newDesktopEntryLauncher(path, name, exe string) *fileLauncher {
	execLine := "Exec=" + quoteExec(exe) + " --minimized"
	return &fileLauncher{
		path: path,
		render: func() ([]byte, error) {
			var b bytes.Buffer
			b.WriteString("[Desktop Entry]\n")
			b.WriteString("Type=Application\n")
			b.WriteString("Name=" + name + "\n")
			b.WriteString(execLine + "\n")
			b.WriteString("Terminal=false\n")
			b.WriteString("X-GNOME-Autostart-enabled=true\n")
			return b.Bytes(), nil
		},
		owns: func(data []byte) bool {
			for _, line := range strings.Split(string(data), "\n") {
				if strings.TrimSpace(line) == execLine {
					return true
				}
			}
			return false
		},
	}
}

// quoteExec quotes a path for a desktop entry Exec key when it has spaces.
func quoteExec(path string) string {
	if !strings.ContainsAny(path, " \t\"") {
		return path
	}
	return `"` + strings.ReplaceAll(path, `"`, `\"`) + `"`
}
