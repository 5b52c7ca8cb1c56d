package main

import (
	"context"
	"fmt"
	"time"

	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/teeworldscn/admin-shell/internal/autolaunch"
	"github.com/teeworldscn/admin-shell/internal/bridge"
	"github.com/teeworldscn/admin-shell/internal/config"
	"github.com/teeworldscn/admin-shell/internal/lifecycle"
	"github.com/teeworldscn/admin-shell/internal/remote"
	"github.com/teeworldscn/admin-shell/internal/settings"
)

// How often the window is checked for an OS minimize. Wails has no
// minimize event.
const minimisePollInterval = 500 * time.Millisecond

// App glues the Wails window, the tray and the page bridge to the
// lifecycle coordinator.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg    *config.Config
	log    logger.Logger
	store  *settings.Store
	prefs  *settings.Prefs
	client *bridge.Client
	proxy  *remote.Proxy
	tray   *SystrayManager
	coord  *lifecycle.Coordinator
}

// NewApp wires every collaborator. Nothing native is touched until startup.
func NewApp(cfg *config.Config, store *settings.Store, log logger.Logger, minimized bool) (*App, error) {
	a := &App{
		cfg:   cfg,
		log:   log,
		store: store,
		prefs: settings.NewPrefs(store),
	}

	a.client = bridge.NewClient(bridge.TransportFunc(a.sendToPage), log)
	a.client.OnEvent(a.pageEvent)

	proxy, err := remote.New(cfg.RemoteURL, a.pageScript, log)
	if err != nil {
		return nil, err
	}
	a.proxy = proxy

	var launcher lifecycle.Launcher
	if l, err := autolaunch.New(config.AppID); err != nil {
		log.Warning(fmt.Sprintf("[app] launch at login unavailable: %v", err))
	} else {
		launcher = l
	}

	a.tray = NewSystrayManager(trayIcon(), a.post, log)
	a.coord = lifecycle.New(lifecycle.Deps{
		Shell:    a,
		Tray:     a.tray,
		Page:     a.client,
		Prefs:    a.prefs,
		Launcher: launcher,
		Log:      log,
		URL:      cfg.RemoteURL,
		Options: lifecycle.WindowOptions{
			Title:     config.AppName,
			Width:     cfg.Width,
			Height:    cfg.Height,
			MinWidth:  cfg.MinWidth,
			MinHeight: cfg.MinHeight,
		},
		StartHidden: minimized,
	})
	return a, nil
}

func (a *App) post(ev lifecycle.Event) {
	a.coord.Post(ev)
}

// startup is called when the application starts
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	runtime.EventsOn(ctx, bridge.EventFromPage, a.fromPage)

	go a.coord.Run(runCtx)
	go a.watchMinimise(runCtx)
	go func() {
		if err := a.store.Watch(runCtx, func() {
			a.post(lifecycle.Event{Kind: lifecycle.SettingsChanged})
		}); err != nil {
			a.log.Warning(fmt.Sprintf("[app] settings watch stopped: %v", err))
		}
	}()

	a.post(lifecycle.Event{Kind: lifecycle.Open})
	a.post(lifecycle.Event{Kind: lifecycle.SyncTray})
	a.log.Info(fmt.Sprintf("[app] started, loading %s via %s", a.cfg.RemoteURL, a.proxy.Origin()))
}

// domReady fires on every page load; the tray starts on the first.
func (a *App) domReady(ctx context.Context) {
	a.tray.Start()
}

// beforeClose turns the window close button into hide-to-tray unless the
// user asked to quit.
func (a *App) beforeClose(ctx context.Context) (prevent bool) {
	if a.coord.Quitting() {
		return false
	}
	a.post(lifecycle.Event{Kind: lifecycle.CloseRequested})
	return true
}

func (a *App) shutdown(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	a.tray.Cleanup()
	a.log.Info("[app] shut down")
}

// secondInstance brings the running window forward when the shell is
// launched again.
func (a *App) secondInstance(data options.SecondInstanceData) {
	a.log.Info(fmt.Sprintf("[app] second instance launched with %v", data.Args))
	a.post(lifecycle.Event{Kind: lifecycle.Reopen})
}

// watchMinimise reports the window entering the minimised state once per
// minimise.
func (a *App) watchMinimise(ctx context.Context) {
	ticker := time.NewTicker(minimisePollInterval)
	defer ticker.Stop()

	was := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := runtime.WindowIsMinimised(a.ctx)
			if now && !was {
				a.post(lifecycle.Event{Kind: lifecycle.Minimize})
			}
			was = now
		}
	}
}

func (a *App) sendToPage(msg bridge.Message) error {
	if a.ctx == nil {
		return bridge.ErrNoPage
	}
	runtime.EventsEmit(a.ctx, bridge.EventToPage, msg)
	return nil
}

func (a *App) fromPage(data ...interface{}) {
	for _, d := range data {
		msg, err := bridge.Decode(d)
		if err != nil {
			a.log.Warning(fmt.Sprintf("[app] bad message from page: %v", err))
			continue
		}
		a.client.Receive(msg)
	}
}

// pageEvent turns unsolicited page messages into coordinator events.
func (a *App) pageEvent(msg bridge.Message) {
	switch msg.Type {
	case bridge.TagPageReady:
		a.post(lifecycle.Event{Kind: lifecycle.PageReady})
	case bridge.TagNotifyChanged:
		a.post(lifecycle.Event{Kind: lifecycle.NotificationChanged, State: msg.State})
	case bridge.TagNavigateExternal:
		a.post(lifecycle.Event{Kind: lifecycle.NewNavigation, URL: msg.URL})
	case bridge.TagWindowFocus:
		a.post(lifecycle.Event{Kind: lifecycle.Focus})
	case bridge.TagWindowBlur:
		a.post(lifecycle.Event{Kind: lifecycle.Blur})
	}
}

// pageScript renders the shim with the override stored right now.
func (a *App) pageScript() ([]byte, error) {
	return bridge.Script(bridge.PageConfig{
		Title:                config.AppName,
		RestrictedPathSuffix: a.cfg.RestrictedPathSuffix,
		LogoutSelector:       a.cfg.LogoutSelector,
		Override:             a.prefs.NotificationOverride(),
	})
}

// Open shows the single Wails window. The window itself is created by
// wails.Run, hidden, and loads the remote site through the proxy.
func (a *App) Open(url string, opts lifecycle.WindowOptions) (lifecycle.Window, error) {
	if a.ctx == nil {
		return nil, fmt.Errorf("window runtime not started")
	}
	w := &window{ctx: a.ctx}
	runtime.WindowSetTitle(a.ctx, opts.Title)
	runtime.WindowSetMinSize(a.ctx, opts.MinWidth, opts.MinHeight)
	runtime.WindowSetSize(a.ctx, opts.Width, opts.Height)
	runtime.WindowCenter(a.ctx)
	if !opts.Hidden {
		w.Show()
		w.Focus()
	}
	a.log.Info(fmt.Sprintf("[app] window opened for %s (hidden=%v)", url, opts.Hidden))
	return w, nil
}

// OpenExternal hands url to the system browser.
func (a *App) OpenExternal(url string) error {
	runtime.BrowserOpenURL(a.ctx, url)
	a.log.Info(fmt.Sprintf("[app] opened %s in the system browser", url))
	return nil
}

// Exit stops the event loop; the process ends when wails.Run returns.
func (a *App) Exit() {
	if a.cancel != nil {
		a.cancel()
	}
}

// window drives the Wails main window through the runtime.
type window struct {
	ctx context.Context
}

func (w *window) Show() error {
	runtime.WindowShow(w.ctx)
	runtime.WindowUnminimise(w.ctx)
	return nil
}

func (w *window) Hide() error {
	runtime.WindowHide(w.ctx)
	return nil
}

// Focus raises the window above others without pinning it there.
func (w *window) Focus() error {
	runtime.WindowShow(w.ctx)
	runtime.WindowSetAlwaysOnTop(w.ctx, true)
	runtime.WindowSetAlwaysOnTop(w.ctx, false)
	return nil
}

// Reload reloads the page the user is on. The injected shim announces the
// new load with a fresh session.
func (w *window) Reload() error {
	runtime.WindowReload(w.ctx)
	return nil
}

func (w *window) Close(force bool) error {
	if force {
		runtime.Quit(w.ctx)
		return nil
	}
	runtime.WindowHide(w.ctx)
	return nil
}
