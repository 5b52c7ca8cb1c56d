package lifecycle

import "github.com/teeworldscn/admin-shell/internal/settings"

// Phase is the window lifecycle state.
type Phase int

const (
	Unopened Phase = iota
	Visible
	Hidden
	Closing
)

func (p Phase) String() string {
	switch p {
	case Unopened:
		return "unopened"
	case Visible:
		return "visible"
	case Hidden:
		return "hidden"
	case Closing:
		return "closing"
	}
	return "unknown"
}

// Kind identifies an event.
type Kind int

const (
	Open Kind = iota
	TrayClicked
	Reopen
	Minimize
	CloseRequested
	Quit
	Reload
	Focus
	Blur
	NewNavigation
	Logout
	ToggleNotification
	ToggleAutoLaunch
	ToggleStartMinimized
	SyncTray
	SettingsChanged
	PageReady
	NotificationChanged
	ToggleWindow

	// Results of work done off the control goroutine.
	logoutSettled
	logoutAvailability
	autoLaunchSettled
	autoLaunchQueried
)

var kindNames = map[Kind]string{
	Open:                 "open",
	TrayClicked:          "tray-clicked",
	Reopen:               "reopen",
	Minimize:             "minimize",
	CloseRequested:       "close-requested",
	Quit:                 "quit",
	Reload:               "reload",
	Focus:                "focus",
	Blur:                 "blur",
	NewNavigation:        "new-navigation",
	Logout:               "logout",
	ToggleNotification:   "toggle-notification",
	ToggleAutoLaunch:     "toggle-auto-launch",
	ToggleStartMinimized: "toggle-start-minimized",
	SyncTray:             "sync-tray",
	SettingsChanged:      "settings-changed",
	PageReady:            "page-ready",
	NotificationChanged:  "notification-changed",
	ToggleWindow:         "toggle-window",
	logoutSettled:        "logout-settled",
	logoutAvailability:   "logout-availability",
	autoLaunchSettled:    "auto-launch-settled",
	autoLaunchQueried:    "auto-launch-queried",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Event is delivered to Dispatch. Only the fields relevant to Kind are set.
type Event struct {
	Kind Kind

	URL   string              // NewNavigation
	On    bool                // Toggle*, and results carrying a checkbox state
	State settings.Permission // NotificationChanged
	Err   error               // results
}
