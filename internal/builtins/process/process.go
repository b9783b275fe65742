// Package process is the `process` built-in module: argv, env and exit,
// treated as opaque host collaborators rather than part of the module
// subsystem's own semantics.
package process

import (
	"os"

	lua "github.com/yuin/gopher-lua"

	"hype/internal/bridge"
)

// New builds the process module table. It satisfies loader.BuiltinFactory.
func New(L *lua.LState) (lua.LValue, error) {
	t := L.NewTable()
	t.RawSetString("argv", bridge.NewStringArray(L, os.Args))
	t.RawSetString("env", envTable(L))
	t.RawSetString("exit", L.NewFunction(exit))
	return t, nil
}

func envTable(L *lua.LState) *lua.LTable {
	t := L.NewTable()
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				t.RawSetString(kv[:i], lua.LString(kv[i+1:]))
				break
			}
		}
	}
	return t
}

func exit(L *lua.LState) int {
	code := 0
	if L.GetTop() >= 1 {
		code = L.CheckInt(1)
	}
	os.Exit(code)
	return 0
}
