package lifecycle

// Pseudo-phases used only in the table.
const (
	anyPhase Phase = -1
	same     Phase = -2
)

type action func(c *Coordinator, ev Event, to Phase) error

type transition struct {
	on    Kind
	from  Phase
	guard func(c *Coordinator) bool
	to    Phase
	do    action
}

func (t transition) apply(c *Coordinator, ev Event, to Phase) error { return t.do(c, ev, to) }

func startMinimized(c *Coordinator) bool { return c.startHidden || c.prefs.StartMinimized() }
func quitting(c *Coordinator) bool       { return c.state.Quitting() }

// transitions is matched top to bottom; the first row whose event, phase
// and guard match wins.
var transitions = []transition{
	{on: Open, from: Unopened, guard: startMinimized, to: Hidden, do: (*Coordinator).open},
	{on: Open, from: Unopened, to: Visible, do: (*Coordinator).open},

	{on: Reopen, from: Unopened, guard: startMinimized, to: Hidden, do: (*Coordinator).open},
	{on: Reopen, from: Unopened, to: Visible, do: (*Coordinator).open},
	{on: Reopen, from: Hidden, to: Visible, do: (*Coordinator).showAndFocus},
	{on: Reopen, from: Visible, to: Visible, do: (*Coordinator).focus},

	// A tray click is an explicit request to see the window.
	{on: TrayClicked, from: Unopened, to: Visible, do: (*Coordinator).open},
	{on: TrayClicked, from: Hidden, to: Visible, do: (*Coordinator).showAndFocus},
	{on: TrayClicked, from: Visible, to: Visible, do: (*Coordinator).focus},

	// The tray's show/hide item.
	{on: ToggleWindow, from: Unopened, to: Visible, do: (*Coordinator).open},
	{on: ToggleWindow, from: Hidden, to: Visible, do: (*Coordinator).showAndFocus},
	{on: ToggleWindow, from: Visible, to: Hidden, do: (*Coordinator).hide},

	{on: Minimize, from: Visible, to: Hidden, do: (*Coordinator).hide},
	{on: Minimize, from: Hidden, to: Hidden, do: (*Coordinator).hide},

	{on: CloseRequested, from: anyPhase, guard: quitting, to: Closing, do: (*Coordinator).destroy},
	{on: CloseRequested, from: Visible, to: Hidden, do: (*Coordinator).hide},
	{on: CloseRequested, from: Hidden, to: Hidden, do: (*Coordinator).hide},

	{on: Quit, from: anyPhase, to: Closing, do: (*Coordinator).quit},

	{on: Reload, from: Visible, to: same, do: (*Coordinator).reload},
	{on: Reload, from: Hidden, to: same, do: (*Coordinator).reload},

	// Page focus reports arrive late and out of band; only Show moves the phase.
	{on: Focus, from: Visible, to: same, do: (*Coordinator).focused},
	{on: Focus, from: Hidden, to: same, do: (*Coordinator).focused},
	{on: Blur, from: anyPhase, to: same, do: (*Coordinator).logWindowEvent},

	{on: NewNavigation, from: anyPhase, to: same, do: (*Coordinator).openExternal},

	{on: Logout, from: Visible, to: same, do: (*Coordinator).logout},
	{on: Logout, from: Hidden, to: same, do: (*Coordinator).logout},
	{on: logoutSettled, from: anyPhase, to: same, do: (*Coordinator).logoutDone},
	{on: logoutAvailability, from: anyPhase, to: same, do: (*Coordinator).setLogoutAvailable},

	{on: ToggleNotification, from: anyPhase, to: same, do: (*Coordinator).toggleNotification},
	{on: NotificationChanged, from: anyPhase, to: same, do: (*Coordinator).notificationChanged},
	{on: PageReady, from: anyPhase, to: same, do: (*Coordinator).pageReady},

	{on: ToggleStartMinimized, from: anyPhase, to: same, do: (*Coordinator).toggleStartMinimized},
	{on: ToggleAutoLaunch, from: anyPhase, to: same, do: (*Coordinator).toggleAutoLaunch},
	{on: autoLaunchSettled, from: anyPhase, to: same, do: (*Coordinator).autoLaunchDone},
	{on: autoLaunchQueried, from: anyPhase, to: same, do: (*Coordinator).autoLaunchKnown},

	{on: SyncTray, from: anyPhase, to: same, do: (*Coordinator).syncTray},
	{on: SettingsChanged, from: anyPhase, to: same, do: (*Coordinator).settingsChanged},
}

func (c *Coordinator) lookup(k Kind, from Phase) (transition, bool) {
	for _, t := range transitions {
		if t.on != k {
			continue
		}
		if t.from != anyPhase && t.from != from {
			continue
		}
		if t.guard != nil && !t.guard(c) {
			continue
		}
		return t, true
	}
	return transition{}, false
}
