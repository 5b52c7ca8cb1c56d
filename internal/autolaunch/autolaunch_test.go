package autolaunch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDesktopEntry_EnableDisable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autostart", "admin-shell.desktop")
	l := newDesktopEntryLauncher(path, "admin-shell", "/opt/admin shell/admin-shell")

	enabled, err := l.IsEnabled()
	if err != nil || enabled {
		t.Fatalf("expected disabled before enable, got %v err=%v", enabled, err)
	}

	if err := l.Enable(); err != nil {
		t.Fatalf("enable: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `Exec="/opt/admin shell/admin-shell" --minimized`) {
		t.Fatalf("expected quoted Exec line, got:\n%s", data)
	}
	if enabled, err := l.IsEnabled(); err != nil || !enabled {
		t.Fatalf("expected enabled, got %v err=%v", enabled, err)
	}

	if err := l.Disable(); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if err := l.Disable(); err != nil {
		t.Fatalf("second disable should be a no-op, got %v", err)
	}
	if enabled, _ := l.IsEnabled(); enabled {
		t.Fatalf("expected disabled after disable")
	}
}

func TestDesktopEntry_ForeignEntryIsNotOurs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin-shell.desktop")
	if err := os.WriteFile(path, []byte("[Desktop Entry]\nExec=/usr/bin/other\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := newDesktopEntryLauncher(path, "admin-shell", "/usr/bin/admin-shell")
	if enabled, err := l.IsEnabled(); err != nil || enabled {
		t.Fatalf("expected foreign entry to read as disabled, got %v err=%v", enabled, err)
	}
}

func TestLaunchAgent_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LaunchAgents", "cn.teeworlds.admin-shell.plist")
	l := newLaunchAgentLauncher(path, "cn.teeworlds.admin-shell", "/Applications/Admin.app/Contents/MacOS/admin-shell")

	if err := l.Enable(); err != nil {
		t.Fatalf("enable: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, want := range []string{"<key>Label</key>", "<key>RunAtLoad</key>", "<true/>", "--minimized"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %q in plist:\n%s", want, data)
		}
	}
	if enabled, err := l.IsEnabled(); err != nil || !enabled {
		t.Fatalf("expected enabled, got %v err=%v", enabled, err)
	}

	other := newLaunchAgentLauncher(path, "cn.teeworlds.admin-shell", "/tmp/elsewhere")
	if enabled, _ := other.IsEnabled(); enabled {
		t.Fatalf("expected agent for another binary to read as disabled")
	}

	if err := l.Disable(); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected plist removed, stat err=%v", err)
	}
}

func TestLaunchAgent_CorruptPlistIsDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.plist")
	if err := os.WriteFile(path, []byte("<plist><dict><key>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := newLaunchAgentLauncher(path, "job", "/bin/true")
	if enabled, err := l.IsEnabled(); err != nil || enabled {
		t.Fatalf("expected corrupt plist to read as disabled, got %v err=%v", enabled, err)
	}
}
