package main

import (
	"errors"
	"fmt"
	goruntime "runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wailsapp/wails/v2/pkg/logger"

	"github.com/teeworldscn/admin-shell/internal/autolaunch"
	"github.com/teeworldscn/admin-shell/internal/config"
	"github.com/teeworldscn/admin-shell/internal/settings"
)

var (
	flagURL       string
	flagMinimized bool
	flagDebug     bool
)

var rootCmd = &cobra.Command{
	Use:   config.AppID,
	Short: "Desktop shell for the TeeworldsCN admin site",
	Long: `Keeps the TeeworldsCN admin site open in a native window with a tray icon.
Closing the window hides it to the tray; quit from the tray menu to exit.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if flagURL != "" {
			cfg.RemoteURL = flagURL
		}
		cfg.Debug = flagDebug
		if err := cfg.Validate(); err != nil {
			return err
		}
		return runShell(cfg, flagMinimized)
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVar(&flagURL, "url", "", "remote URL to load (overrides ADMIN_SHELL_URL and DEV_URL)")
	rootCmd.Flags().BoolVar(&flagMinimized, "minimized", false, "start hidden in the tray")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsListCmd)
	autolaunchCmd.AddCommand(autolaunchStatusCmd, autolaunchEnableCmd, autolaunchDisableCmd)

	rootCmd.AddCommand(autolaunchCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(versionCmd)
}

// cliLogger is used by subcommands, which have no log file of their own.
func cliLogger() logger.Logger {
	return logger.NewDefaultLogger()
}

func openStore() (*settings.Store, error) {
	path, err := config.SettingsFile()
	if err != nil {
		return nil, err
	}
	return settings.Open(path, cliLogger()), nil
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change stored preferences",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a stored preference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		v, ok := effectiveSetting(settings.NewPrefs(store), args[0])
		if !ok {
			return fmt.Errorf("unknown setting %q (known: %s)", args[0], strings.Join(knownSettings, ", "))
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a stored preference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := applySetting(settings.NewPrefs(store), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
		return nil
	},
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all preferences with their effective values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		prefs := settings.NewPrefs(store)
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", store.Path())
		for _, key := range knownSettings {
			v, _ := effectiveSetting(prefs, key)
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, v)
		}

		// Stored keys the shell does not read.
		stored, err := store.Keys()
		if err != nil {
			return err
		}
		for _, key := range stored {
			if _, known := effectiveSetting(prefs, key); known {
				continue
			}
			v, _ := store.Get(key)
			fmt.Fprintf(cmd.OutOrStdout(), "# unrecognized: %s = %s\n", key, v)
		}
		return nil
	},
}

var knownSettings = []string{settings.KeyNotificationOverride, settings.KeyStartMinimized}

// effectiveSetting returns the value the shell would use, defaults included.
func effectiveSetting(prefs *settings.Prefs, key string) (string, bool) {
	switch key {
	case settings.KeyNotificationOverride:
		return string(prefs.NotificationOverride()), true
	case settings.KeyStartMinimized:
		return fmt.Sprint(prefs.StartMinimized()), true
	}
	return "", false
}

func applySetting(prefs *settings.Prefs, key, value string) error {
	switch key {
	case settings.KeyNotificationOverride:
		perm, ok := settings.ParsePermission(value)
		if !ok {
			return fmt.Errorf("invalid %s %q: want %s or %s", key, value, settings.Granted, settings.Denied)
		}
		return prefs.SetNotificationOverride(perm)
	case settings.KeyStartMinimized:
		b, ok := settings.ParseBool(value)
		if !ok {
			return fmt.Errorf("invalid %s %q: want true or false", key, value)
		}
		return prefs.SetStartMinimized(b)
	}
	return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(knownSettings, ", "))
}

var autolaunchCmd = &cobra.Command{
	Use:   "autolaunch",
	Short: "Manage launching at login",
}

func launcherOrErr() (autolaunch.Launcher, error) {
	l, err := autolaunch.New(config.AppID)
	if errors.Is(err, autolaunch.ErrUnsupported) {
		return nil, fmt.Errorf("launch at login is not supported on %s", goruntime.GOOS)
	}
	return l, err
}

var autolaunchStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the shell starts at login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := launcherOrErr()
		if err != nil {
			return err
		}
		enabled, err := l.IsEnabled()
		if err != nil {
			return fmt.Errorf("failed to query launch at login: %w", err)
		}
		if enabled {
			fmt.Fprintln(cmd.OutOrStdout(), "enabled")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "disabled")
		}
		return nil
	},
}

var autolaunchEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Start the shell at login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := launcherOrErr()
		if err != nil {
			return err
		}
		if err := l.Enable(); err != nil {
			return fmt.Errorf("failed to enable launch at login: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "enabled")
		return nil
	},
}

var autolaunchDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop starting the shell at login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := launcherOrErr()
		if err != nil {
			return err
		}
		if err := l.Disable(); err != nil {
			return fmt.Errorf("failed to disable launch at login: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "disabled")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", config.AppName, config.Version)
		fmt.Fprintf(cmd.OutOrStdout(), "  OS/Arch: %s/%s\n", goruntime.GOOS, goruntime.GOARCH)
		fmt.Fprintf(cmd.OutOrStdout(), "  Go: %s\n", goruntime.Version())
	},
}
