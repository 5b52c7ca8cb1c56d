// Package remote serves the remote admin site through the window's asset
// server so the page shim can be injected into every HTML document.
package remote

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"

	"github.com/wailsapp/wails/v2/pkg/logger"

	"github.com/teeworldscn/admin-shell/internal/bridge"
)

// Scripts injected at the top of every HTML document. The wails runtime
// files are served by the asset server itself.
var injected = []string{"/wails/ipc.js", "/wails/runtime.js", bridge.ScriptPath}

// ScriptSource renders the shim for the page about to load.
type ScriptSource func() ([]byte, error)

// Proxy forwards window requests to the remote origin.
type Proxy struct {
	target *url.URL
	origin *url.URL
	script ScriptSource
	log    logger.Logger
	rp     *httputil.ReverseProxy
}

// New returns a proxy for remoteURL. Requests for "/" are redirected to the
// path of remoteURL.
func New(remoteURL string, script ScriptSource, log logger.Logger) (*Proxy, error) {
	target, err := url.Parse(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote url %q: %w", remoteURL, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("remote url %q must be absolute", remoteURL)
	}

	p := &Proxy{
		target: target,
		origin: &url.URL{Scheme: target.Scheme, Host: target.Host},
		script: script,
		log:    log,
	}
	p.rp = &httputil.ReverseProxy{
		Rewrite:        p.rewrite,
		ModifyResponse: p.modifyResponse,
		ErrorHandler:   p.errorHandler,
	}
	return p, nil
}

// Origin returns scheme://host of the remote site.
func (p *Proxy) Origin() string {
	return p.origin.String()
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == bridge.ScriptPath:
		p.serveScript(w)
	case r.URL.Path == "/" && r.URL.RawQuery == "" && p.target.Path != "" && p.target.Path != "/":
		http.Redirect(w, r, p.target.RequestURI(), http.StatusFound)
	default:
		p.rp.ServeHTTP(w, r)
	}
}

func (p *Proxy) serveScript(w http.ResponseWriter) {
	js, err := p.script()
	if err != nil {
		p.log.Error(fmt.Sprintf("[remote] render bridge script: %v", err))
		http.Error(w, "bridge unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(js)
}

// rewrite points the request at the remote origin. The site checks Origin
// on form posts, so it is replaced with the remote one.
func (p *Proxy) rewrite(pr *httputil.ProxyRequest) {
	pr.SetURL(p.origin)
	pr.Out.Host = p.origin.Host

	if pr.In.Header.Get("Origin") != "" {
		pr.Out.Header.Set("Origin", p.origin.String())
	}
	if ref := pr.In.Header.Get("Referer"); ref != "" {
		if u, err := url.Parse(ref); err == nil {
			u.Scheme, u.Host = p.origin.Scheme, p.origin.Host
			pr.Out.Header.Set("Referer", u.String())
		}
	}
	// Let the transport negotiate compression so bodies arrive decoded.
	pr.Out.Header.Del("Accept-Encoding")
}

func (p *Proxy) modifyResponse(resp *http.Response) error {
	p.rewriteLocation(resp)
	p.rewriteCookies(resp)

	if !isHTML(resp.Header.Get("Content-Type")) || resp.Header.Get("Content-Encoding") != "" {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("read html body: %w", err)
	}
	body = Inject(body)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
	return nil
}

// rewriteLocation keeps same-site redirects inside the window.
func (p *Proxy) rewriteLocation(resp *http.Response) {
	loc := resp.Header.Get("Location")
	if loc == "" {
		return
	}
	u, err := url.Parse(loc)
	if err != nil || !u.IsAbs() {
		return
	}
	if u.Scheme == p.origin.Scheme && u.Host == p.origin.Host {
		resp.Header.Set("Location", u.RequestURI())
	}
}

// rewriteCookies drops the Domain attribute so the webview stores remote
// cookies against the local asset origin.
func (p *Proxy) rewriteCookies(resp *http.Response) {
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return
	}
	resp.Header.Del("Set-Cookie")
	for _, c := range cookies {
		c.Domain = ""
		resp.Header.Add("Set-Cookie", c.String())
	}
}

func (p *Proxy) errorHandler(w http.ResponseWriter, r *http.Request, err error) {
	p.log.Warning(fmt.Sprintf("[remote] %s %s: %v", r.Method, r.URL.Path, err))
	http.Error(w, "remote site unreachable", http.StatusBadGateway)
}

func isHTML(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "text/html")
}

// Inject inserts the shell's script tags right after <head>, or at the top
// of the document when it has none. Documents that already load the bridge
// are returned unchanged.
func Inject(doc []byte) []byte {
	if bytes.Contains(doc, []byte(bridge.ScriptPath)) {
		return doc
	}
	var tags bytes.Buffer
	for _, src := range injected {
		fmt.Fprintf(&tags, `<script src="%s"></script>`, src)
	}

	at := headEnd(asciiLower(doc))
	out := make([]byte, 0, len(doc)+tags.Len())
	out = append(out, doc[:at]...)
	out = append(out, tags.Bytes()...)
	out = append(out, doc[at:]...)
	return out
}

// headEnd returns the offset just past the opening <head> tag, or 0.
func headEnd(lower []byte) int {
	for off := 0; ; {
		i := bytes.Index(lower[off:], []byte("<head"))
		if i < 0 {
			return 0
		}
		i += off + len("<head")
		if i < len(lower) && (lower[i] == '>' || lower[i] == ' ' || lower[i] == '\t' || lower[i] == '\n' || lower[i] == '\r') {
			if j := bytes.IndexByte(lower[i:], '>'); j >= 0 {
				return i + j + 1
			}
			return 0
		}
		off = i
	}
}

// asciiLower lowercases ASCII letters only, keeping byte offsets stable.
func asciiLower(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}
