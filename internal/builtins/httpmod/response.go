package httpmod

import (
	"encoding/json"
	"net/http"

	lua "github.com/yuin/gopher-lua"

	"hype/internal/builtins/jsonmod"
	"hype/internal/errs"
)

// newResponseTable builds the script-facing response record: status,
// statusText, ok, headers and body as plain fields, text()/json() as
// native methods.
func newResponseTable(L *lua.LState, r *rawResponse) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("status", lua.LNumber(r.status))
	t.RawSetString("statusText", lua.LString(http.StatusText(r.status)))
	t.RawSetString("ok", lua.LBool(r.status >= 200 && r.status < 300))

	headers := L.CreateTable(0, len(r.headers))
	for k, v := range r.headers {
		headers.RawSetString(k, lua.LString(v))
	}
	t.RawSetString("headers", headers)
	t.RawSetString("body", lua.LString(string(r.body)))

	body := r.body
	t.RawSetString("text", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(string(body)))
		return 1
	}))
	t.RawSetString("json", L.NewFunction(func(L *lua.LState) int {
		var v interface{}
		if err := json.Unmarshal(body, &v); err != nil {
			L.RaiseError("%s", errs.Wrap(errs.JsonParseError, err, "parsing response body").Error())
			return 0
		}
		L.Push(jsonmod.FromGo(L, v))
		return 1
	}))
	return t
}
