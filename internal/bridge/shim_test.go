package bridge

import (
	"encoding/json"
	"testing"

	"github.com/dop251/goja"
	"github.com/wailsapp/wails/v2/pkg/logger"
)

// browserFakes is the slice of a browser the shim touches: the Wails
// runtime, window and document listeners, Notification, navigator.permissions
// and URL. Globals prefixed with __ are hooks for the tests.
const browserFakes = `
var window = this;
window.top = window;
var console = { log: function () {}, error: function () {} };
var location = { pathname: "/", href: "https://admin.test/" };

var __native = {};
window.runtime = {
  EventsOn: function (name, fn) { __native[name] = fn; },
  EventsEmit: function (name, msg) { __goEmit(name, JSON.stringify(msg)); },
};
function __deliver(raw) {
  var fn = __native["shell:native"];
  if (fn) fn(JSON.parse(raw));
}

var __winListeners = {};
window.addEventListener = function (type, fn) {
  (__winListeners[type] = __winListeners[type] || []).push(fn);
};
function __fireWindow(type) {
  (__winListeners[type] || []).forEach(function (fn) { fn({ type: type }); });
}

var __controls = {};
var __clicks = 0;
var __domThrows = false;
var __docListeners = {};
var document = {
  querySelector: function (sel) {
    if (__domThrows) throw new Error("detached node");
    return __controls[sel] ? { click: function () { __clicks++; } } : null;
  },
  addEventListener: function (type, fn) {
    (__docListeners[type] = __docListeners[type] || []).push(fn);
  },
  getElementsByTagName: function () { return []; },
};
function __clickLink(href) {
  var prevented = false;
  var link = { href: href };
  var ev = {
    target: { closest: function (sel) { return sel === "a[target=_blank]" ? link : null; } },
    preventDefault: function () { prevented = true; },
  };
  (__docListeners.click || []).forEach(function (fn) { fn(ev); });
  return prevented;
}

var __prompts = 0;
function Notification() {}
Notification.permission = "default";
Notification.requestPermission = function () {
  __prompts++;
  return Promise.resolve("default");
};

var navigator = {
  permissions: {
    query: function (desc) { return Promise.resolve({ state: "prompt", name: desc.name }); },
  },
};

function URL(u, base) {
  if (/^[a-z][a-z0-9+.-]*:/i.test(u)) {
    if (!/^[a-z][a-z0-9+.-]*:\/\/[^\/\s\[\]]+/i.test(u)) throw new TypeError("Invalid URL: " + u);
    this.href = u;
  } else if (u.charAt(0) === "/") {
    this.href = base.match(/^[a-z]+:\/\/[^\/]+/i)[0] + u;
  } else {
    this.href = base.replace(/[^\/]*$/, "") + u;
  }
}
URL.prototype.toString = function () { return this.href; };
`

// jsPage runs the real shim in a JS runtime and connects it to a Client.
type jsPage struct {
	t       *testing.T
	vm      *goja.Runtime
	deliver goja.Callable
	client  *Client

	// sent is every message the shim emitted, in order.
	sent []Message
}

// loadPage evaluates the fakes, then setup, then the rendered shim.
func loadPage(t *testing.T, cfg PageConfig, setup string) *jsPage {
	t.Helper()
	p := &jsPage{t: t, vm: goja.New()}
	p.client = NewClient(TransportFunc(p.toPage), logger.NewDefaultLogger())

	if err := p.vm.Set("__goEmit", p.fromPage); err != nil {
		t.Fatalf("bind emit: %v", err)
	}
	p.eval(browserFakes)
	if setup != "" {
		p.eval(setup)
	}
	deliver, ok := goja.AssertFunction(p.vm.Get("__deliver"))
	if !ok {
		t.Fatal("__deliver is not a function")
	}
	p.deliver = deliver

	js, err := Script(cfg)
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	if _, err := p.vm.RunScript(ScriptPath, string(js)); err != nil {
		t.Fatalf("run shim: %v", err)
	}
	return p
}

func (p *jsPage) eval(src string) goja.Value {
	p.t.Helper()
	v, err := p.vm.RunString(src)
	if err != nil {
		p.t.Fatalf("eval %q: %v", src, err)
	}
	return v
}

func (p *jsPage) addControl(selector string) {
	p.t.Helper()
	if err := p.vm.Get("__controls").ToObject(p.vm).Set(selector, true); err != nil {
		p.t.Fatalf("add control: %v", err)
	}
}

func (p *jsPage) clicks() int64 {
	return p.vm.Get("__clicks").ToInteger()
}

func (p *jsPage) toPage(msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = p.deliver(goja.Undefined(), p.vm.ToValue(string(raw)))
	return err
}

func (p *jsPage) fromPage(name, payload string) {
	if name != EventFromPage {
		p.t.Errorf("shim emitted on %q, want %q", name, EventFromPage)
		return
	}
	msg, err := Decode(payload)
	if err != nil {
		p.t.Errorf("shim sent undecodable message %s: %v", payload, err)
		return
	}
	p.sent = append(p.sent, msg)
	p.client.Receive(msg)
}

func (p *jsPage) sentOf(tag Tag) []Message {
	var out []Message
	for _, m := range p.sent {
		if m.Type == tag {
			out = append(out, m)
		}
	}
	return out
}
