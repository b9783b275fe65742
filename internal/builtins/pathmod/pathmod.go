// Package pathmod is the `path` built-in module: join, dirname, basename,
// extname/extension and resolve, all normalizing the platform's native
// path separator the way the resolver does internally.
package pathmod

import (
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// New builds the path module table. It satisfies loader.BuiltinFactory.
func New(L *lua.LState) (lua.LValue, error) {
	t := L.NewTable()
	t.RawSetString("join", L.NewFunction(join))
	t.RawSetString("dirname", L.NewFunction(dirname))
	t.RawSetString("basename", L.NewFunction(basename))
	t.RawSetString("extname", L.NewFunction(extname))
	t.RawSetString("extension", L.NewFunction(extname))
	t.RawSetString("resolve", L.NewFunction(resolve))
	t.RawSetString("sep", lua.LString(string(filepath.Separator)))
	return t, nil
}

func join(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.CheckString(i)
	}
	L.Push(lua.LString(filepath.Join(parts...)))
	return 1
}

func dirname(L *lua.LState) int {
	p := L.CheckString(1)
	L.Push(lua.LString(filepath.Dir(p)))
	return 1
}

func basename(L *lua.LState) int {
	p := L.CheckString(1)
	base := filepath.Base(p)
	if L.GetTop() >= 2 {
		suffix := L.CheckString(2)
		base = strings.TrimSuffix(base, suffix)
	}
	L.Push(lua.LString(base))
	return 1
}

func extname(L *lua.LState) int {
	p := L.CheckString(1)
	L.Push(lua.LString(filepath.Ext(p)))
	return 1
}

func resolve(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.CheckString(i)
	}
	joined := filepath.Join(parts...)
	abs, err := filepath.Abs(joined)
	if err != nil {
		L.RaiseError("path.resolve: %s", err.Error())
		return 0
	}
	L.Push(lua.LString(abs))
	return 1
}
