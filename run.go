package main

import (
	"fmt"
	goruntime "runtime"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/windows"

	"github.com/teeworldscn/admin-shell/internal/config"
	"github.com/teeworldscn/admin-shell/internal/lifecycle"
	"github.com/teeworldscn/admin-shell/internal/settings"
)

// runShell starts the window, tray and coordinator and blocks until quit.
func runShell(cfg *config.Config, minimized bool) error {
	if err := config.EnsureDir(); err != nil {
		return err
	}
	logPath, err := config.LogFile()
	if err != nil {
		return err
	}
	log := logger.NewFileLogger(logPath)

	settingsPath, err := config.SettingsFile()
	if err != nil {
		return err
	}
	store := settings.Open(settingsPath, log)

	app, err := NewApp(cfg, store, log, minimized)
	if err != nil {
		return err
	}

	logLevel := logger.INFO
	if cfg.Debug {
		logLevel = logger.DEBUG
	}

	err = wails.Run(&options.App{
		Title:     config.AppName,
		Width:     cfg.Width,
		Height:    cfg.Height,
		MinWidth:  cfg.MinWidth,
		MinHeight: cfg.MinHeight,
		// The coordinator decides when the window is first shown.
		StartHidden: true,
		AssetServer: &assetserver.Options{
			Handler: app.proxy,
		},
		Menu:               appMenu(app.post),
		BackgroundColour:   &options.RGBA{R: 255, G: 255, B: 255, A: 1},
		Logger:             log,
		LogLevel:           logLevel,
		LogLevelProduction: logLevel,
		SingleInstanceLock: &options.SingleInstanceLock{
			UniqueId:               "cn.teeworlds." + config.AppID,
			OnSecondInstanceLaunch: app.secondInstance,
		},
		OnStartup:     app.startup,
		OnDomReady:    app.domReady,
		OnBeforeClose: app.beforeClose,
		OnShutdown:    app.shutdown,
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisablePinchZoom:     true,
		},
	})
	if err != nil {
		return fmt.Errorf("window runtime failed: %w", err)
	}
	return nil
}

// appMenu is only needed on macOS, where the webview gets copy and paste
// from the Edit menu.
func appMenu(post func(lifecycle.Event)) *menu.Menu {
	if goruntime.GOOS != "darwin" {
		return nil
	}
	m := menu.NewMenu()
	view := m.AddSubmenu(config.AppName)
	view.AddText("显示主窗口", keys.CmdOrCtrl("0"), func(*menu.CallbackData) {
		post(lifecycle.Event{Kind: lifecycle.TrayClicked})
	})
	view.AddText("隐藏", keys.CmdOrCtrl("w"), func(*menu.CallbackData) {
		post(lifecycle.Event{Kind: lifecycle.Minimize})
	})
	view.AddText("重新加载", keys.CmdOrCtrl("r"), func(*menu.CallbackData) {
		post(lifecycle.Event{Kind: lifecycle.Reload})
	})
	view.AddSeparator()
	view.AddText("退出", keys.CmdOrCtrl("q"), func(*menu.CallbackData) {
		post(lifecycle.Event{Kind: lifecycle.Quit})
	})
	m.Append(menu.EditMenu())
	return m
}
