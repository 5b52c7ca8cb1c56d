// Package bridge carries capability calls between the shell and the script
// running inside the remote page. The two sides never share objects; they
// exchange tagged messages over a Transport.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/teeworldscn/admin-shell/internal/settings"
)

// Tag identifies a message kind.
type Tag string

const (
	// native -> page
	TagLogoutRequest       Tag = "logout-request"
	TagNotifyToggle        Tag = "notify-toggle"
	TagRestrictedPageQuery Tag = "restricted-page-query"

	// page -> native
	TagPageReady            Tag = "page-ready"
	TagLogoutResult         Tag = "logout-result"
	TagNotifyChanged        Tag = "notify-changed"
	TagRestrictedPageResult Tag = "restricted-page-result"
	TagNavigateExternal     Tag = "navigate-external"
	TagWindowFocus          Tag = "window-focus"
	TagWindowBlur           Tag = "window-blur"
)

// Event names used on the window's event bus.
const (
	EventToPage   = "shell:native"
	EventFromPage = "shell:page"
)

var (
	// ErrNoPage is returned when no page has announced itself since the last load.
	ErrNoPage = errors.New("bridge: page not ready")
	// ErrPageGone is returned to calls that were pending when the page went away.
	ErrPageGone = errors.New("bridge: page reloaded or navigated away")
)

// Message is the single wire shape for every tag. Unused fields are omitted.
type Message struct {
	Type    Tag    `json:"type"`
	ID      string `json:"id,omitempty"`      // correlates a result with its request
	Session string `json:"session,omitempty"` // page load that sent or should receive it

	OK         bool                `json:"ok,omitempty"`         // logout-result
	Restricted bool                `json:"restricted,omitempty"` // restricted-page-result
	Allowed    bool                `json:"allowed,omitempty"`    // notify-toggle
	State      settings.Permission `json:"state,omitempty"`      // notify-changed, page-ready
	URL        string              `json:"url,omitempty"`        // navigate-external
	Path       string              `json:"path,omitempty"`       // page-ready
}

// Decode converts a value received from the window event bus (usually a
// map produced by the JS runtime) into a Message.
func Decode(v interface{}) (Message, error) {
	var msg Message
	switch data := v.(type) {
	case Message:
		return data, nil
	case string:
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			return Message{}, fmt.Errorf("decode bridge message: %w", err)
		}
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return Message{}, fmt.Errorf("encode bridge payload: %w", err)
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			return Message{}, fmt.Errorf("decode bridge message: %w", err)
		}
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("decode bridge message: missing type")
	}
	return msg, nil
}

// Transport delivers a message to the other side.
type Transport interface {
	Send(msg Message) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(msg Message) error

func (f TransportFunc) Send(msg Message) error { return f(msg) }
