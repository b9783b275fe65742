package httpmod

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"hype/internal/bridge"
	"hype/internal/builtins/jsonmod"
	"hype/internal/errs"
)

type requestOptions struct {
	method  string
	body    []byte
	headers map[string]string
	timeout time.Duration
}

func parseOptions(L *lua.LState, defaultMethod string, idx int) requestOptions {
	opts := requestOptions{method: defaultMethod, headers: map[string]string{}}
	tbl, ok := L.Get(idx).(*lua.LTable)
	if !ok {
		return opts
	}
	if m, ok := tbl.RawGetString("method").(lua.LString); ok && string(m) != "" {
		opts.method = string(m)
	}
	if b, ok := tbl.RawGetString("body").(lua.LString); ok {
		opts.body = []byte(string(b))
	}
	if h, ok := tbl.RawGetString("headers").(*lua.LTable); ok {
		h.ForEach(func(k, v lua.LValue) {
			opts.headers[k.String()] = v.String()
		})
	}
	if ms, ok := tbl.RawGetString("timeout").(lua.LNumber); ok {
		opts.timeout = time.Duration(float64(ms)) * time.Millisecond
	}
	return opts
}

// luaVerb returns a Lua-callable for a fixed-method request whose second
// positional argument is an options table (no positional body argument,
// per the script-facing get/post/put/patch/delete/head shape).
func (c *Client) luaVerb(method string, withBody bool) lua.LGFunction {
	return func(L *lua.LState) int {
		rawURL := L.CheckString(1)
		opts := parseOptions(L, method, 2)
		opts.method = method
		if !withBody {
			opts.body = nil
		}
		return c.doRequestAndPush(L, rawURL, opts)
	}
}

// luaFetch implements fetch(url, opts): method defaults to GET, opts
// carries method/body/headers/timeout.
func (c *Client) luaFetch(L *lua.LState) int {
	rawURL := L.CheckString(1)
	opts := parseOptions(L, "GET", 2)
	return c.doRequestAndPush(L, rawURL, opts)
}

// luaJSONVerb implements postJson/putJson(url, value): marshals value to
// JSON and sets Content-Type.
func (c *Client) luaJSONVerb(method string) lua.LGFunction {
	return func(L *lua.LState) int {
		rawURL := L.CheckString(1)
		value := L.CheckAny(2)
		data, err := jsonEncode(value)
		if err != nil {
			return bridge.Raise(L, err)
		}
		opts := requestOptions{
			method:  method,
			body:    data,
			headers: map[string]string{"Content-Type": "application/json"},
		}
		return c.doRequestAndPush(L, rawURL, opts)
	}
}

func jsonEncode(v lua.LValue) ([]byte, error) {
	goVal := jsonmod.ToGo(v)
	data, err := json.Marshal(goVal)
	if err != nil {
		return nil, errs.Wrap(errs.JsonParseError, err, "encoding request body")
	}
	return data, nil
}

func (c *Client) doRequestAndPush(L *lua.LState, rawURL string, opts requestOptions) int {
	resp, err := c.do(rawURL, opts)
	if err != nil {
		return bridge.Raise(L, err)
	}
	L.Push(newResponseTable(L, resp))
	return 1
}

type rawResponse struct {
	status  int
	headers map[string]string
	body    []byte
}

func (c *Client) do(rawURL string, opts requestOptions) (*rawResponse, error) {
	u, err := validateURL(rawURL)
	if err != nil {
		return nil, err
	}

	httpClient := c.http
	ctx := context.Background()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, opts.method, u.String(), bytes.NewReader(opts.body))
	if err != nil {
		return nil, errs.Wrap(errs.RequestError, err, "building request")
	}
	for k, v := range opts.headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, classifyDoError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.NetworkError, err, "reading response body")
	}

	headers := make(map[string]string, len(resp.Header))
	for name, values := range resp.Header {
		headers[strings.ToLower(name)] = strings.Join(values, ", ")
	}

	return &rawResponse{status: resp.StatusCode, headers: headers, body: body}, nil
}

func classifyDoError(err error) error {
	if urlErr, ok := err.(*url.Error); ok {
		if urlErr.Timeout() {
			return errs.Wrap(errs.TimeoutError, err, "request timed out")
		}
		return errs.Wrap(errs.NetworkError, err, "request failed")
	}
	return errs.Wrap(errs.NetworkError, err, "request failed")
}
