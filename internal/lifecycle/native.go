package lifecycle

import (
	"context"

	"github.com/teeworldscn/admin-shell/internal/settings"
)

// Window is a live native window.
type Window interface {
	Show() error
	Hide() error
	Focus() error
	// Reload re-navigates the window to its content URL.
	Reload() error
	// Close hides the window unless force is set, in which case it is destroyed.
	Close(force bool) error
}

// WindowOptions are passed to Shell.Open.
type WindowOptions struct {
	Title     string
	Width     int
	Height    int
	MinWidth  int
	MinHeight int
	Hidden    bool
}

// Shell is the native window library.
type Shell interface {
	Open(url string, opts WindowOptions) (Window, error)
	// OpenExternal hands url to the system browser.
	OpenExternal(url string) error
	// Exit terminates the process after the window and tray are gone.
	Exit()
}

// MenuItem names the tray entries the coordinator updates.
type MenuItem int

const (
	MenuLogout MenuItem = iota
	MenuNotifications
	MenuAutoLaunch
	MenuStartMinimized
)

func (m MenuItem) String() string {
	switch m {
	case MenuLogout:
		return "logout"
	case MenuNotifications:
		return "notifications"
	case MenuAutoLaunch:
		return "auto-launch"
	case MenuStartMinimized:
		return "start-minimized"
	}
	return "unknown"
}

// Tray is the tray icon and its menu.
type Tray interface {
	SetChecked(item MenuItem, checked bool)
	SetEnabled(item MenuItem, enabled bool)
	Remove()
}

// Page is the capability handle of whatever page is currently loaded.
// Implementations resolve the live page on every call and return an error
// when there is none.
type Page interface {
	Logout(ctx context.Context) (bool, error)
	RestrictedPage(ctx context.Context) (bool, error)
	SetNotification(perm settings.Permission) error
	// Reset forgets the current page; called when the window reloads.
	Reset()
}

// Prefs is the persisted preference surface.
type Prefs interface {
	NotificationOverride() settings.Permission
	SetNotificationOverride(perm settings.Permission) error
	StartMinimized() bool
	SetStartMinimized(v bool) error
}

// Launcher is the login-item adapter.
type Launcher interface {
	IsEnabled() (bool, error)
	Enable() error
	Disable() error
}
