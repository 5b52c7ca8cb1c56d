// Package lifecycle owns the main window and tray state machine.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/wailsapp/wails/v2/pkg/logger"

	"github.com/teeworldscn/admin-shell/internal/bridge"
	"github.com/teeworldscn/admin-shell/internal/settings"
)

// DefaultCallTimeout bounds a single bridge round trip.
const DefaultCallTimeout = 5 * time.Second

var errNotLogoutPage = errors.New("current page has no logout control")

// State is the coordinator's window state. Only the control goroutine
// mutates it.
type State struct {
	Phase  Phase
	Window Window // nil while Unopened
	URL    string

	// quitting is set once by Quit and never reset. It is atomic because the
	// native close hook asks for it from another goroutine.
	quitting atomic.Bool
}

// Quitting reports whether a quit has been requested.
func (s *State) Quitting() bool { return s.quitting.Load() }

// Deps are the collaborators of a Coordinator.
type Deps struct {
	Shell    Shell
	Tray     Tray
	Page     Page
	Prefs    Prefs
	Launcher Launcher // nil when the platform has none
	Log      logger.Logger

	URL     string
	Options WindowOptions
	// StartHidden opens the first window hidden regardless of the stored
	// preference, as when launched at login.
	StartHidden bool

	CallTimeout time.Duration
}

// Coordinator translates tray, window and page events into window state
// transitions. Dispatch must only be called from one goroutine; other
// goroutines hand events over with Post.
type Coordinator struct {
	state State

	shell    Shell
	tray     Tray
	page     Page
	prefs    Prefs
	launcher Launcher
	log      logger.Logger
	opts     WindowOptions
	timeout  time.Duration

	startHidden bool

	// pushed is the last override sent to the page.
	pushed settings.Permission

	events  chan Event
	stopped chan struct{}
}

// New returns a coordinator in the Unopened phase.
func New(d Deps) *Coordinator {
	timeout := d.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	c := &Coordinator{
		shell:       d.Shell,
		tray:        d.Tray,
		page:        d.Page,
		prefs:       d.Prefs,
		launcher:    d.Launcher,
		log:         d.Log,
		opts:        d.Options,
		timeout:     timeout,
		startHidden: d.StartHidden,
		events:      make(chan Event, 64),
		stopped:     make(chan struct{}),
	}
	c.state.URL = d.URL
	return c
}

// Phase returns the current phase. Control goroutine only.
func (c *Coordinator) Phase() Phase { return c.state.Phase }

// Quitting is safe to call from any goroutine.
func (c *Coordinator) Quitting() bool { return c.state.Quitting() }

// Post queues ev for the control goroutine. It returns without delivering
// once Run has stopped.
func (c *Coordinator) Post(ev Event) {
	select {
	case c.events <- ev:
	case <-c.stopped:
	}
}

// Run dispatches posted events until ctx is done.
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.events:
			c.Dispatch(ev)
		}
	}
}

// Dispatch applies ev to the state machine.
func (c *Coordinator) Dispatch(ev Event) {
	from := c.state.Phase
	if from == Closing {
		c.log.Debug(fmt.Sprintf("[coordinator] %s ignored while closing", ev.Kind))
		return
	}

	t, ok := c.lookup(ev.Kind, from)
	if !ok {
		c.log.Debug(fmt.Sprintf("[coordinator] %s ignored in phase %s", ev.Kind, from))
		return
	}

	to := t.to
	if to == same {
		to = from
	}
	if err := t.apply(c, ev, to); err != nil {
		c.log.Error(fmt.Sprintf("[coordinator] %s in phase %s: %v", ev.Kind, from, err))
	}

	// A window phase is only entered with a window to back it.
	if (to == Visible || to == Hidden) && c.state.Window == nil {
		return
	}
	if to != from {
		c.log.Info(fmt.Sprintf("[coordinator] %s: %s -> %s", ev.Kind, from, to))
	}
	c.state.Phase = to
}

// open creates the window. Hidden follows the target phase.
func (c *Coordinator) open(_ Event, to Phase) error {
	opts := c.opts
	opts.Hidden = to == Hidden
	w, err := c.shell.Open(c.state.URL, opts)
	if err != nil {
		return fmt.Errorf("open window: %w", err)
	}
	c.state.Window = w
	return nil
}

// showAndFocus shows the window, then focuses it even if showing failed.
func (c *Coordinator) showAndFocus(_ Event, _ Phase) error {
	w := c.state.Window
	showErr := w.Show()
	if showErr != nil {
		c.log.Warning(fmt.Sprintf("[coordinator] show failed, focusing anyway: %v", showErr))
	}
	if err := w.Focus(); err != nil {
		return errors.Join(showErr, fmt.Errorf("focus: %w", err))
	}
	return nil
}

func (c *Coordinator) focus(_ Event, _ Phase) error {
	if err := c.state.Window.Focus(); err != nil {
		return fmt.Errorf("focus: %w", err)
	}
	return nil
}

func (c *Coordinator) hide(_ Event, _ Phase) error {
	if err := c.state.Window.Hide(); err != nil {
		return fmt.Errorf("hide: %w", err)
	}
	return nil
}

// destroy closes the window for real; only reachable once quitting.
func (c *Coordinator) destroy(_ Event, _ Phase) error {
	if c.state.Window == nil {
		return nil
	}
	if err := c.state.Window.Close(true); err != nil {
		return fmt.Errorf("close window: %w", err)
	}
	return nil
}

// quit tears everything down in order: window, tray, process.
func (c *Coordinator) quit(ev Event, to Phase) error {
	c.state.quitting.Store(true)
	c.log.Info("[coordinator] quitting")

	err := c.destroy(ev, to)
	if err != nil {
		c.log.Error(fmt.Sprintf("[coordinator] %v", err))
	}
	c.tray.Remove()
	c.shell.Exit()
	return nil
}

func (c *Coordinator) reload(_ Event, _ Phase) error {
	c.page.Reset()
	if err := c.state.Window.Reload(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	c.log.Info("[coordinator] window reloaded")
	return nil
}

// openExternal sends a page's new-window target to the system browser. The
// window itself is never navigated.
func (c *Coordinator) openExternal(ev Event, _ Phase) error {
	u, err := url.Parse(ev.URL)
	if err != nil {
		return fmt.Errorf("invalid navigation target %q: %w", ev.URL, err)
	}
	switch u.Scheme {
	case "http", "https", "mailto":
	default:
		return fmt.Errorf("refusing to open %q externally", ev.URL)
	}
	if err := c.shell.OpenExternal(u.String()); err != nil {
		return fmt.Errorf("open external: %w", err)
	}
	return nil
}

func (c *Coordinator) logWindowEvent(ev Event, _ Phase) error {
	c.log.Debug(fmt.Sprintf("[coordinator] window %s", ev.Kind))
	return nil
}

func (c *Coordinator) focused(ev Event, to Phase) error {
	c.log.Debug("[coordinator] window focused")
	c.refreshLogout()
	return nil
}

// async runs fn off the control goroutine and posts its result.
func (c *Coordinator) async(fn func(ctx context.Context) Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		c.Post(fn(ctx))
	}()
}

func (c *Coordinator) logout(_ Event, _ Phase) error {
	c.async(func(ctx context.Context) Event {
		restricted, err := c.page.RestrictedPage(ctx)
		if err != nil {
			return Event{Kind: logoutSettled, Err: err}
		}
		if !restricted {
			return Event{Kind: logoutSettled, Err: errNotLogoutPage}
		}
		ok, err := c.page.Logout(ctx)
		return Event{Kind: logoutSettled, On: ok, Err: err}
	})
	return nil
}

func (c *Coordinator) logoutDone(ev Event, _ Phase) error {
	switch {
	case ev.Err != nil:
		c.log.Info(fmt.Sprintf("[coordinator] logout not performed: %v", ev.Err))
	case !ev.On:
		c.log.Info("[coordinator] logout failed - no logout element found")
	default:
		c.log.Info("[coordinator] logout performed")
	}
	return nil
}

// refreshLogout enables the logout item only while the page can log out.
func (c *Coordinator) refreshLogout() {
	c.async(func(ctx context.Context) Event {
		restricted, err := c.page.RestrictedPage(ctx)
		return Event{Kind: logoutAvailability, On: err == nil && restricted}
	})
}

func (c *Coordinator) setLogoutAvailable(ev Event, _ Phase) error {
	c.tray.SetEnabled(MenuLogout, ev.On)
	return nil
}

// pushOverride sends the stored override to the page. A missing page is not
// an error: the next page load receives it.
func (c *Coordinator) pushOverride(perm settings.Permission) {
	c.pushed = perm
	if err := c.page.SetNotification(perm); err != nil {
		if errors.Is(err, bridge.ErrNoPage) {
			c.log.Debug("[coordinator] page not ready, override applies on next load")
			return
		}
		c.log.Warning(fmt.Sprintf("[coordinator] push notification override: %v", err))
	}
}

func (c *Coordinator) toggleNotification(ev Event, _ Phase) error {
	perm := settings.PermissionFor(ev.On)
	if err := c.prefs.SetNotificationOverride(perm); err != nil {
		c.tray.SetChecked(MenuNotifications, c.prefs.NotificationOverride() == settings.Granted)
		return fmt.Errorf("save notification override: %w", err)
	}
	c.tray.SetChecked(MenuNotifications, ev.On)
	c.pushOverride(perm)
	c.log.Info(fmt.Sprintf("[coordinator] notifications %s", perm))
	return nil
}

func (c *Coordinator) notificationChanged(ev Event, _ Phase) error {
	c.tray.SetChecked(MenuNotifications, ev.State == settings.Granted)
	return nil
}

func (c *Coordinator) pageReady(_ Event, _ Phase) error {
	c.pushOverride(c.prefs.NotificationOverride())
	c.refreshLogout()
	return nil
}

func (c *Coordinator) toggleStartMinimized(ev Event, _ Phase) error {
	if err := c.prefs.SetStartMinimized(ev.On); err != nil {
		c.tray.SetChecked(MenuStartMinimized, c.prefs.StartMinimized())
		return fmt.Errorf("save start-minimized: %w", err)
	}
	c.tray.SetChecked(MenuStartMinimized, ev.On)
	return nil
}

// syncTray sets every checkbox from its source of truth.
func (c *Coordinator) syncTray(_ Event, _ Phase) error {
	c.tray.SetChecked(MenuNotifications, c.prefs.NotificationOverride() == settings.Granted)
	c.tray.SetChecked(MenuStartMinimized, c.prefs.StartMinimized())
	c.tray.SetEnabled(MenuLogout, false)

	if c.launcher == nil {
		c.tray.SetEnabled(MenuAutoLaunch, false)
		return nil
	}
	c.async(func(context.Context) Event {
		enabled, err := c.launcher.IsEnabled()
		return Event{Kind: autoLaunchQueried, On: enabled, Err: err}
	})
	return nil
}

// settingsChanged follows edits made to the settings file by another process.
func (c *Coordinator) settingsChanged(_ Event, _ Phase) error {
	perm := c.prefs.NotificationOverride()
	c.tray.SetChecked(MenuNotifications, perm == settings.Granted)
	c.tray.SetChecked(MenuStartMinimized, c.prefs.StartMinimized())
	if perm != c.pushed {
		c.pushOverride(perm)
	}
	return nil
}

// toggleAutoLaunch re-queries the OS rather than trusting the checkbox, then
// flips. Concurrent toggles are not serialized; each runs its own sequence.
func (c *Coordinator) toggleAutoLaunch(_ Event, _ Phase) error {
	if c.launcher == nil {
		return errors.New("auto-launch is not available on this platform")
	}
	c.async(func(context.Context) Event {
		enabled, err := c.launcher.IsEnabled()
		if err != nil {
			return Event{Kind: autoLaunchSettled, Err: fmt.Errorf("query: %w", err)}
		}
		if enabled {
			err = c.launcher.Disable()
		} else {
			err = c.launcher.Enable()
		}
		if err != nil {
			return Event{Kind: autoLaunchSettled, Err: err}
		}
		now, qerr := c.launcher.IsEnabled()
		if qerr != nil {
			now = !enabled
		}
		return Event{Kind: autoLaunchSettled, On: now}
	})
	return nil
}

func (c *Coordinator) autoLaunchDone(ev Event, _ Phase) error {
	if ev.Err != nil {
		return fmt.Errorf("toggle auto-launch: %w", ev.Err)
	}
	c.tray.SetChecked(MenuAutoLaunch, ev.On)
	c.log.Info(fmt.Sprintf("[coordinator] auto-launch enabled=%v", ev.On))
	return nil
}

func (c *Coordinator) autoLaunchKnown(ev Event, _ Phase) error {
	if ev.Err != nil {
		return fmt.Errorf("check auto-launch status: %w", ev.Err)
	}
	c.tray.SetChecked(MenuAutoLaunch, ev.On)
	return nil
}
