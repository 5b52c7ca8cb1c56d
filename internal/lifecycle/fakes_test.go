package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/teeworldscn/admin-shell/internal/bridge"
	"github.com/teeworldscn/admin-shell/internal/settings"
)

type fakeWindow struct {
	url        string
	shows      int
	hides      int
	focuses    int
	reloads    int
	softCloses int
	destroyed  bool
	showErr    error
}

func (w *fakeWindow) Show() error {
	w.shows++
	return w.showErr
}
func (w *fakeWindow) Hide() error   { w.hides++; return nil }
func (w *fakeWindow) Focus() error  { w.focuses++; return nil }
func (w *fakeWindow) Reload() error { w.reloads++; return nil }
func (w *fakeWindow) Close(force bool) error {
	if force {
		w.destroyed = true
	} else {
		w.softCloses++
	}
	return nil
}

type fakeShell struct {
	windows  []*fakeWindow
	opts     []WindowOptions
	external []string
	exited   bool
	openErr  error
}

func (s *fakeShell) Open(url string, opts WindowOptions) (Window, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	w := &fakeWindow{url: url}
	s.windows = append(s.windows, w)
	s.opts = append(s.opts, opts)
	return w, nil
}

func (s *fakeShell) OpenExternal(url string) error {
	s.external = append(s.external, url)
	return nil
}

func (s *fakeShell) Exit() { s.exited = true }

type fakeTray struct {
	checked map[MenuItem]bool
	enabled map[MenuItem]bool
	removed bool
}

func newFakeTray() *fakeTray {
	return &fakeTray{checked: map[MenuItem]bool{}, enabled: map[MenuItem]bool{}}
}

func (t *fakeTray) SetChecked(item MenuItem, checked bool) { t.checked[item] = checked }
func (t *fakeTray) SetEnabled(item MenuItem, enabled bool) { t.enabled[item] = enabled }
func (t *fakeTray) Remove()                                { t.removed = true }

// fakePage is touched from async goroutines, so it locks.
type fakePage struct {
	mu         sync.Mutex
	loaded     bool
	restricted bool
	logoutOK   bool
	logouts    int
	pushed     []settings.Permission
	resets     int
}

func (p *fakePage) Logout(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		return false, bridge.ErrNoPage
	}
	p.logouts++
	return p.logoutOK, nil
}

func (p *fakePage) RestrictedPage(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		return false, bridge.ErrNoPage
	}
	return p.restricted, nil
}

func (p *fakePage) SetNotification(perm settings.Permission) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		return bridge.ErrNoPage
	}
	p.pushed = append(p.pushed, perm)
	return nil
}

func (p *fakePage) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resets++
	p.loaded = false
}

type fakeLauncher struct {
	mu         sync.Mutex
	enabled    bool
	enableErr  error
	queryErr   error
	enables    int
	disables   int
	queryCalls int
}

func (l *fakeLauncher) IsEnabled() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queryCalls++
	return l.enabled, l.queryErr
}

func (l *fakeLauncher) Enable() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enables++
	if l.enableErr != nil {
		return l.enableErr
	}
	l.enabled = true
	return nil
}

func (l *fakeLauncher) Disable() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disables++
	l.enabled = false
	return nil
}

// recLogger implements the wails logger.Logger interface and keeps lines.
type recLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+msg)
}

func (l *recLogger) Print(m string)   { l.add("PRINT", m) }
func (l *recLogger) Trace(m string)   { l.add("TRACE", m) }
func (l *recLogger) Debug(m string)   { l.add("DEBUG", m) }
func (l *recLogger) Info(m string)    { l.add("INFO", m) }
func (l *recLogger) Warning(m string) { l.add("WARNING", m) }
func (l *recLogger) Error(m string)   { l.add("ERROR", m) }
func (l *recLogger) Fatal(m string)   { l.add("FATAL", m) }

func (l *recLogger) has(level, substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.HasPrefix(line, level+" ") && strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func (l *recLogger) dump() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fmt.Sprint(l.lines)
}

type mapKV map[string]string

func (m mapKV) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapKV) Set(key, value string) error {
	m[key] = value
	return nil
}

type harness struct {
	c        *Coordinator
	shell    *fakeShell
	tray     *fakeTray
	page     *fakePage
	launcher *fakeLauncher
	prefs    *settings.Prefs
	log      *recLogger
}

const testURL = "https://teeworlds.cn/admin/tickets"

func newHarness(t *testing.T, prefs *settings.Prefs) *harness {
	t.Helper()
	if prefs == nil {
		prefs = settings.NewPrefs(mapKV{})
	}
	h := &harness{
		shell:    &fakeShell{},
		tray:     newFakeTray(),
		page:     &fakePage{},
		launcher: &fakeLauncher{},
		prefs:    prefs,
		log:      &recLogger{},
	}
	h.c = New(Deps{
		Shell:       h.shell,
		Tray:        h.tray,
		Page:        h.page,
		Prefs:       prefs,
		Launcher:    h.launcher,
		Log:         h.log,
		URL:         testURL,
		Options:     WindowOptions{Title: "Admin", Width: 1152, Height: 648},
		CallTimeout: time.Second,
	})
	return h
}

func (h *harness) window() *fakeWindow {
	if len(h.shell.windows) == 0 {
		return nil
	}
	return h.shell.windows[len(h.shell.windows)-1]
}

// settle dispatches the next event posted by background work.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	select {
	case ev := <-h.c.events:
		h.c.Dispatch(ev)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a posted event; log: %s", h.log.dump())
	}
}
