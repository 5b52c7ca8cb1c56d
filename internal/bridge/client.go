package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2/pkg/logger"

	"github.com/teeworldscn/admin-shell/internal/settings"
)

type pendingCall struct {
	session string
	ch      chan Message
}

// Client is the native end of the bridge. It never caches a page handle:
// every call resolves the session that most recently announced itself, and
// a reload drops that session.
type Client struct {
	transport Transport
	log       logger.Logger

	mu      sync.Mutex
	session string
	pending map[string]*pendingCall

	// onEvent receives page-initiated messages (page-ready, notify-changed,
	// navigate-external). Set before the first Receive.
	onEvent func(Message)
}

// NewClient returns a client that sends through t.
func NewClient(t Transport, log logger.Logger) *Client {
	return &Client{
		transport: t,
		log:       log,
		pending:   make(map[string]*pendingCall),
	}
}

// OnEvent registers the handler for page-initiated messages.
func (c *Client) OnEvent(fn func(Message)) {
	c.mu.Lock()
	c.onEvent = fn
	c.mu.Unlock()
}

// Session returns the current page session id, empty when no page is loaded.
func (c *Client) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Reset forgets the current page. Calls still waiting fail with ErrPageGone.
func (c *Client) Reset() {
	c.mu.Lock()
	c.session = ""
	pending := c.pending
	c.pending = make(map[string]*pendingCall)
	c.mu.Unlock()

	for _, p := range pending {
		close(p.ch)
	}
}

// Receive handles a message arriving from the page.
func (c *Client) Receive(msg Message) {
	switch msg.Type {
	case TagPageReady:
		if msg.Session == "" {
			c.log.Warning("[bridge] page-ready without session, ignored")
			return
		}
		c.Reset()
		c.mu.Lock()
		c.session = msg.Session
		c.mu.Unlock()
		c.log.Info(fmt.Sprintf("[bridge] page ready (session %s, path %s)", msg.Session, msg.Path))
		c.emit(msg)

	case TagLogoutResult, TagRestrictedPageResult:
		c.mu.Lock()
		p, ok := c.pending[msg.ID]
		if ok && p.session == msg.Session {
			delete(c.pending, msg.ID)
		} else {
			ok = false
		}
		c.mu.Unlock()
		if !ok {
			c.log.Debug(fmt.Sprintf("[bridge] dropping stale %s %s", msg.Type, msg.ID))
			return
		}
		p.ch <- msg

	case TagNotifyChanged, TagNavigateExternal, TagWindowFocus, TagWindowBlur:
		if msg.Session != c.Session() {
			c.log.Debug(fmt.Sprintf("[bridge] dropping %s from stale session %s", msg.Type, msg.Session))
			return
		}
		c.emit(msg)

	default:
		c.log.Warning(fmt.Sprintf("[bridge] unexpected message type %q", msg.Type))
	}
}

func (c *Client) emit(msg Message) {
	c.mu.Lock()
	fn := c.onEvent
	c.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

// Logout asks the page to trigger its logout control.
func (c *Client) Logout(ctx context.Context) (bool, error) {
	resp, err := c.call(ctx, Message{Type: TagLogoutRequest})
	if err != nil {
		return false, err
	}
	return resp.OK, nil
}

// RestrictedPage asks the page whether its current path carries the logout control.
func (c *Client) RestrictedPage(ctx context.Context) (bool, error) {
	resp, err := c.call(ctx, Message{Type: TagRestrictedPageQuery})
	if err != nil {
		return false, err
	}
	return resp.Restricted, nil
}

// SetNotification pushes the override to the page. The page acknowledges
// asynchronously with notify-changed.
func (c *Client) SetNotification(perm settings.Permission) error {
	session := c.Session()
	if session == "" {
		return ErrNoPage
	}
	msg := Message{
		Type:    TagNotifyToggle,
		Session: session,
		Allowed: perm == settings.Granted,
	}
	if err := c.transport.Send(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, req Message) (Message, error) {
	c.mu.Lock()
	if c.session == "" {
		c.mu.Unlock()
		return Message{}, ErrNoPage
	}
	req.ID = uuid.NewString()
	req.Session = c.session
	p := &pendingCall{session: c.session, ch: make(chan Message, 1)}
	c.pending[req.ID] = p
	c.mu.Unlock()

	if err := c.transport.Send(req); err != nil {
		c.forget(req.ID)
		return Message{}, fmt.Errorf("send %s: %w", req.Type, err)
	}

	select {
	case resp, ok := <-p.ch:
		if !ok {
			return Message{}, ErrPageGone
		}
		return resp, nil
	case <-ctx.Done():
		c.forget(req.ID)
		return Message{}, fmt.Errorf("%s: %w", req.Type, ctx.Err())
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}
