package main

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
	"github.com/wailsapp/wails/v2/pkg/logger"

	"github.com/teeworldscn/admin-shell/internal/config"
	"github.com/teeworldscn/admin-shell/internal/lifecycle"
)

// SystrayManager manages the system tray. It implements lifecycle.Tray;
// checkbox and enabled state set before the tray is ready is applied once
// the menu exists.
type SystrayManager struct {
	trayIcon []byte
	post     func(lifecycle.Event)
	log      logger.Logger
	quitCh   chan struct{}

	startOnce sync.Once
	quitOnce  sync.Once

	mu      sync.Mutex
	ready   bool
	items   map[lifecycle.MenuItem]*systray.MenuItem
	checked map[lifecycle.MenuItem]bool
	enabled map[lifecycle.MenuItem]bool
}

// NewSystrayManager creates a new system tray manager. Menu clicks are
// delivered through post.
func NewSystrayManager(trayIconData []byte, post func(lifecycle.Event), log logger.Logger) *SystrayManager {
	return &SystrayManager{
		trayIcon: trayIconData,
		post:     post,
		log:      log,
		quitCh:   make(chan struct{}),
		items:    make(map[lifecycle.MenuItem]*systray.MenuItem),
		checked:  make(map[lifecycle.MenuItem]bool),
		enabled:  make(map[lifecycle.MenuItem]bool),
	}
}

// Start starts the system tray. Later calls do nothing.
func (s *SystrayManager) Start() {
	s.startOnce.Do(func() {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error(fmt.Sprintf("[tray] startup failed: %v", r))
				}
			}()

			systray.Run(s.onReady, s.onExit)
		}()
	})
}

// onReady is called when tray initialization is complete
func (s *SystrayManager) onReady() {
	if len(s.trayIcon) > 0 {
		systray.SetIcon(s.trayIcon)
	}
	systray.SetTitle(config.AppName)
	systray.SetTooltip(config.AppName)

	mVersion := systray.AddMenuItem(fmt.Sprintf("TWCN管理系统 - 版本 %s", config.Version), "")
	mVersion.Disable()
	mLogout := systray.AddMenuItem("更换账号", "Log out of the admin site")
	mNotify := systray.AddMenuItemCheckbox("弹窗通知", "Allow the site to show notifications", true)
	mAuto := systray.AddMenuItemCheckbox("开机自启", "Start at login", false)
	mMinimized := systray.AddMenuItemCheckbox("启动时最小化", "Start hidden in the tray", false)
	systray.AddSeparator()
	mToggle := systray.AddMenuItem("显示/隐藏", "Show or hide the main window")
	systray.AddSeparator()
	mReload := systray.AddMenuItem("重新加载", "Reload the admin site")
	systray.AddSeparator()
	mExit := systray.AddMenuItem("退出", "Exit application")

	s.mu.Lock()
	s.items[lifecycle.MenuLogout] = mLogout
	s.items[lifecycle.MenuNotifications] = mNotify
	s.items[lifecycle.MenuAutoLaunch] = mAuto
	s.items[lifecycle.MenuStartMinimized] = mMinimized
	s.ready = true
	for item, v := range s.checked {
		s.applyChecked(item, v)
	}
	for item, v := range s.enabled {
		s.applyEnabled(item, v)
	}
	s.mu.Unlock()
	s.log.Info("[tray] ready")

	go func() {
		for {
			select {
			case <-mLogout.ClickedCh:
				s.post(lifecycle.Event{Kind: lifecycle.Logout})

			// Checkbox clicks carry the state the user asked for; the
			// coordinator sets the box once the change is stored.
			case <-mNotify.ClickedCh:
				s.post(lifecycle.Event{Kind: lifecycle.ToggleNotification, On: !mNotify.Checked()})
			case <-mAuto.ClickedCh:
				s.post(lifecycle.Event{Kind: lifecycle.ToggleAutoLaunch})
			case <-mMinimized.ClickedCh:
				s.post(lifecycle.Event{Kind: lifecycle.ToggleStartMinimized, On: !mMinimized.Checked()})

			case <-mToggle.ClickedCh:
				s.post(lifecycle.Event{Kind: lifecycle.ToggleWindow})
			case <-mReload.ClickedCh:
				s.post(lifecycle.Event{Kind: lifecycle.Reload})
			case <-mExit.ClickedCh:
				s.post(lifecycle.Event{Kind: lifecycle.Quit})

			case <-s.quitCh:
				return
			}
		}
	}()
}

// onExit is called when the tray exits
func (s *SystrayManager) onExit() {
	s.log.Info("[tray] exited")
}

// SetChecked sets a checkbox item.
func (s *SystrayManager) SetChecked(item lifecycle.MenuItem, checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checked[item] = checked
	if s.ready {
		s.applyChecked(item, checked)
	}
}

// SetEnabled enables or greys out an item.
func (s *SystrayManager) SetEnabled(item lifecycle.MenuItem, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled[item] = enabled
	if s.ready {
		s.applyEnabled(item, enabled)
	}
}

func (s *SystrayManager) applyChecked(item lifecycle.MenuItem, checked bool) {
	m, ok := s.items[item]
	if !ok {
		return
	}
	if checked {
		m.Check()
	} else {
		m.Uncheck()
	}
}

func (s *SystrayManager) applyEnabled(item lifecycle.MenuItem, enabled bool) {
	m, ok := s.items[item]
	if !ok {
		return
	}
	if enabled {
		m.Enable()
	} else {
		m.Disable()
	}
}

// Remove takes the icon out of the tray.
func (s *SystrayManager) Remove() {
	s.Cleanup()
}

// Cleanup cleans up system tray resources
func (s *SystrayManager) Cleanup() {
	s.quitOnce.Do(func() {
		close(s.quitCh)
		systray.Quit()
	})
}
