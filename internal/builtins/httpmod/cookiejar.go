package httpmod

import (
	lua "github.com/yuin/gopher-lua"

	"hype/internal/bridge"
)

// luaGetCookies returns { name = value, ... } for the cookies the shared
// jar would attach to a request against url, without sending one.
func (c *Client) luaGetCookies(L *lua.LState) int {
	rawURL := L.CheckString(1)
	u, err := validateURL(rawURL)
	if err != nil {
		return bridge.Raise(L, err)
	}

	out := map[string]string{}
	for _, ck := range c.jar.Cookies(u) {
		out[ck.Name] = ck.Value
	}
	L.Push(bridge.NewStringMap(L, out))
	return 1
}
