// Package jsonmod is the `json` built-in module: encode/decode between Lua
// values and JSON text, symmetric with the host's own JSON library. The
// conversion helpers are exported so the http built-in can reuse them for
// postJson/putJson and Response.json().
package jsonmod

import (
	"encoding/json"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"hype/internal/errs"
)

// New builds the json module table. It satisfies loader.BuiltinFactory.
func New(L *lua.LState) (lua.LValue, error) {
	t := L.NewTable()
	t.RawSetString("encode", L.NewFunction(encode))
	t.RawSetString("decode", L.NewFunction(decode))
	return t, nil
}

func encode(L *lua.LState) int {
	v := L.CheckAny(1)
	goVal := ToGo(v)
	data, err := json.Marshal(goVal)
	if err != nil {
		L.RaiseError("%s", errs.Wrap(errs.JsonParseError, err, "encoding value").Error())
		return 0
	}
	L.Push(lua.LString(string(data)))
	return 1
}

func decode(L *lua.LState) int {
	s := L.CheckString(1)
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		L.RaiseError("%s", errs.Wrap(errs.JsonParseError, err, "decoding JSON").Error())
		return 0
	}
	L.Push(FromGo(L, v))
	return 1
}

// ToGo converts a Lua value into a plain Go value suitable for
// encoding/json: LTable becomes []interface{} if it looks like a dense
// 1-based array, map[string]interface{} otherwise.
func ToGo(v lua.LValue) interface{} {
	switch lv := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(lv)
	case lua.LNumber:
		return float64(lv)
	case lua.LString:
		return string(lv)
	case *lua.LTable:
		return tableToGo(lv)
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable) interface{} {
	n := t.Len()
	isArray := n > 0
	if isArray {
		count := 0
		t.ForEach(func(_, _ lua.LValue) { count++ })
		isArray = count == n
	}
	if isArray {
		out := make([]interface{}, 0, n)
		for i := 1; i <= n; i++ {
			out = append(out, ToGo(t.RawGetInt(i)))
		}
		return out
	}

	keys := make([]string, 0)
	values := make(map[string]lua.LValue)
	t.ForEach(func(k, val lua.LValue) {
		ks := k.String()
		keys = append(keys, ks)
		values[ks] = val
	})
	sort.Strings(keys)
	out := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		out[k] = ToGo(values[k])
	}
	return out
}

// FromGo converts a decoded Go value (as produced by encoding/json) back
// into a Lua value.
func FromGo(L *lua.LState, v interface{}) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []interface{}:
		t := L.CreateTable(len(val), 0)
		for i, item := range val {
			t.RawSetInt(i+1, FromGo(L, item))
		}
		return t
	case map[string]interface{}:
		t := L.CreateTable(0, len(val))
		for k, item := range val {
			t.RawSetString(k, FromGo(L, item))
		}
		return t
	default:
		return lua.LNil
	}
}
