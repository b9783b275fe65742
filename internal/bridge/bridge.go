// Package bridge converts between Go values and Lua values, registers
// built-in functions, and turns host-side failures into tag-prefixed
// script errors.
//
// An older cgo binding in this lineage built tables field-by-field with
// raw PushString/RawSet C calls; gopher-lua's pure-Go table API has no
// such per-call overhead, so the batching idea survives only as a
// readability convenience (SetStringFields). ToLua and Func use
// github.com/layeh/gopher-luar for reflection-based marshaling; built-in
// option and response tables are built by hand with RawSetString.
package bridge

import (
	lua "github.com/yuin/gopher-lua"
	luar "github.com/layeh/gopher-luar"

	"hype/internal/errs"
)

// SetStringFields batch-assigns string key/value pairs into t.
func SetStringFields(t *lua.LTable, fields map[string]string) {
	for k, v := range fields {
		t.RawSetString(k, lua.LString(v))
	}
}

// NewStringArray builds a 1-based Lua array from a string slice.
func NewStringArray(L *lua.LState, items []string) *lua.LTable {
	t := L.CreateTable(len(items), 0)
	for i, item := range items {
		t.RawSetInt(i+1, lua.LString(item))
	}
	return t
}

// NewStringMap builds a table from a map[string]string, for things like
// request/response headers.
func NewStringMap(L *lua.LState, m map[string]string) *lua.LTable {
	t := L.CreateTable(0, len(m))
	SetStringFields(t, m)
	return t
}

// ToLua marshals an arbitrary Go value (struct, slice, map, func) to a Lua
// value via gopher-luar's reflection-based bridge.
func ToLua(L *lua.LState, v interface{}) lua.LValue {
	return luar.New(L, v)
}

// Func wraps a Go function as a Lua-callable value. gopher-luar binds
// arguments and return values by reflection and, per its own contract,
// converts a trailing non-nil `error` return into a raised Lua error. In
// this repo only util.sleep and util.time are wrapped this way.
func Func(L *lua.LState, fn interface{}) lua.LValue {
	return luar.New(L, fn)
}

// Raise converts a Go error into a Lua runtime error whose message is
// tag-prefixed, for built-ins written directly against lua.LGFunction
// instead of through gopher-luar (the fs and http built-ins).
func Raise(L *lua.LState, err error) int {
	if te, ok := err.(*errs.Error); ok {
		L.RaiseError("%s", te.Error())
		return 0
	}
	L.RaiseError("%s", err.Error())
	return 0
}
