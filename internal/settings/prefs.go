package settings

import (
	"strconv"
	"strings"
)

// Keys persisted by the shell.
const (
	KeyNotificationOverride = "notificationOverride"
	KeyStartMinimized       = "startMinimized"
)

// Permission is the notification permission presented to the remote page.
type Permission string

const (
	Granted Permission = "granted"
	Denied  Permission = "denied"
)

// PermissionFor maps a checkbox state to a permission.
func PermissionFor(allowed bool) Permission {
	if allowed {
		return Granted
	}
	return Denied
}

// ParsePermission accepts "granted" or "denied", case-insensitively.
func ParsePermission(s string) (Permission, bool) {
	switch Permission(strings.ToLower(strings.TrimSpace(s))) {
	case Granted:
		return Granted, true
	case Denied:
		return Denied, true
	}
	return "", false
}

// ParseBool parses a stored boolean. Malformed values report ok=false.
func ParseBool(s string) (value bool, ok bool) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, false
	}
	return b, true
}

// KV is the store surface the typed accessors need.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Prefs is a typed view over the store. Defaults live here, not on disk.
type Prefs struct {
	kv KV
}

// NewPrefs wraps kv.
func NewPrefs(kv KV) *Prefs {
	return &Prefs{kv: kv}
}

// NotificationOverride returns the stored override, Granted when unset.
func (p *Prefs) NotificationOverride() Permission {
	raw, ok := p.kv.Get(KeyNotificationOverride)
	if !ok {
		return Granted
	}
	perm, ok := ParsePermission(raw)
	if !ok {
		return Granted
	}
	return perm
}

// SetNotificationOverride persists perm.
func (p *Prefs) SetNotificationOverride(perm Permission) error {
	return p.kv.Set(KeyNotificationOverride, string(perm))
}

// StartMinimized reports whether the window should open hidden. Unset is false.
func (p *Prefs) StartMinimized() bool {
	raw, ok := p.kv.Get(KeyStartMinimized)
	if !ok {
		return false
	}
	b, ok := ParseBool(raw)
	return ok && b
}

// SetStartMinimized persists the start-minimized flag.
func (p *Prefs) SetStartMinimized(v bool) error {
	return p.kv.Set(KeyStartMinimized, strconv.FormatBool(v))
}
