// Package httpmod is the `http` built-in module: a single process-wide
// client with a shared transport, shared cookie jar, and the get/post/put/
// patch/delete/head/fetch/postJson/putJson/getCookies surface.
//
// The transport tunes connection pooling over HTTP/2 (golang.org/x/net/http2);
// the per-request plumbing builds the fuller verb set plus cookie, redirect,
// and JSON handling on top of it.
package httpmod

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/publicsuffix"
	lua "github.com/yuin/gopher-lua"

	"hype/internal/errs"
	"hype/internal/loader"
	"hype/internal/obs"
)

var log = obs.For("builtin.http")

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxRedirects = 10
	defaultMaxIdleConns = 10
)

// Options configures NewClientWithOptions. A zero Options uses the same
// defaults as NewClient.
type Options struct {
	Timeout      time.Duration
	MaxRedirects int
	MaxIdleConns int
}

// Client wraps the shared *http.Client and its cookie jar.
type Client struct {
	http         *http.Client
	jar          *cookiejar.Jar
	maxRedirects int
}

func newTransport(maxIdleConnsPerHost int) *http.Transport {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		MaxConnsPerHost:     100,
		IdleConnTimeout:     90 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS13,
		},

		DisableCompression: false,
		DisableKeepAlives:  false,
		ForceAttemptHTTP2:  true,
	}
	_ = http2.ConfigureTransport(transport)
	return transport
}

// NewClient builds the process-wide HTTP client with default settings:
// shared transport, shared cookie jar scoped by the public suffix list,
// 30s timeout, up to 10 redirects followed with cookies preserved across
// the chain.
func NewClient() (*Client, error) {
	return NewClientWithOptions(Options{})
}

// NewClientWithOptions is NewClient with every knob overridable, for hosts
// that configure the shared client from ambient config.
func NewClientWithOptions(opts Options) (*Client, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxRedirects := opts.MaxRedirects
	if maxRedirects == 0 {
		maxRedirects = defaultMaxRedirects
	}
	maxIdleConns := opts.MaxIdleConns
	if maxIdleConns == 0 {
		maxIdleConns = defaultMaxIdleConns
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errs.Wrap(errs.ExecutionError, err, "constructing cookie jar")
	}
	c := &Client{jar: jar, maxRedirects: maxRedirects}
	c.http = &http.Client{
		Transport: newTransport(maxIdleConns),
		Jar:       jar,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= c.maxRedirects {
				log.WithField("url", req.URL.String()).Warn("redirect_limit_reached")
				return errs.New(errs.RequestError, "stopped after %d redirects", c.maxRedirects)
			}
			return nil
		},
	}
	return c, nil
}

// New builds the http module table with default client settings. It
// satisfies loader.BuiltinFactory.
func New(L *lua.LState) (lua.LValue, error) {
	c, err := NewClient()
	if err != nil {
		return nil, err
	}
	return newModuleTable(L, c), nil
}

// NewWithOptions builds the http module table around a client configured
// from opts, for hosts that wire ambient HTTP configuration through.
func NewWithOptions(opts Options) loader.BuiltinFactory {
	return func(L *lua.LState) (lua.LValue, error) {
		c, err := NewClientWithOptions(opts)
		if err != nil {
			return nil, err
		}
		return newModuleTable(L, c), nil
	}
}

func newModuleTable(L *lua.LState, c *Client) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("get", L.NewFunction(c.luaVerb("GET", false)))
	t.RawSetString("post", L.NewFunction(c.luaVerb("POST", true)))
	t.RawSetString("put", L.NewFunction(c.luaVerb("PUT", true)))
	t.RawSetString("patch", L.NewFunction(c.luaVerb("PATCH", true)))
	t.RawSetString("delete", L.NewFunction(c.luaVerb("DELETE", false)))
	t.RawSetString("head", L.NewFunction(c.luaVerb("HEAD", false)))
	t.RawSetString("fetch", L.NewFunction(c.luaFetch))
	t.RawSetString("postJson", L.NewFunction(c.luaJSONVerb("POST")))
	t.RawSetString("putJson", L.NewFunction(c.luaJSONVerb("PUT")))
	t.RawSetString("getCookies", L.NewFunction(c.luaGetCookies))
	return t
}
