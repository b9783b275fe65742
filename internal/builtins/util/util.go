// Package util is the `util` built-in module: inspect(), sleep() and time().
package util

import (
	"fmt"
	"sort"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"hype/internal/bridge"
)

const defaultInspectDepth = 4

// New builds the util module table. It satisfies loader.BuiltinFactory.
func New(L *lua.LState) (lua.LValue, error) {
	t := L.NewTable()
	t.RawSetString("inspect", L.NewFunction(inspect))
	// sleep and time take and return plain scalars, so they go through
	// gopher-luar's reflection-based wrapping instead of a hand-written
	// lua.LGFunction closure.
	t.RawSetString("sleep", bridge.Func(L, sleepSeconds))
	t.RawSetString("time", bridge.Func(L, secondsSinceEpoch))
	return t, nil
}

func inspect(L *lua.LState) int {
	v := L.CheckAny(1)
	depth := defaultInspectDepth
	if opts, ok := L.Get(2).(*lua.LTable); ok {
		if d, ok := opts.RawGetString("depth").(lua.LNumber); ok {
			depth = int(d)
		}
	}
	var b strings.Builder
	writeInspect(&b, v, depth, make(map[*lua.LTable]bool))
	L.Push(lua.LString(b.String()))
	return 1
}

func writeInspect(b *strings.Builder, v lua.LValue, depth int, seen map[*lua.LTable]bool) {
	t, ok := v.(*lua.LTable)
	if !ok {
		b.WriteString(v.String())
		return
	}
	if depth <= 0 {
		b.WriteString("{...}")
		return
	}
	if seen[t] {
		b.WriteString("{<circular>}")
		return
	}
	seen[t] = true

	keys := make([]string, 0)
	values := make(map[string]lua.LValue)
	t.ForEach(func(k, val lua.LValue) {
		ks := k.String()
		keys = append(keys, ks)
		values[ks] = val
	})
	sort.Strings(keys)

	b.WriteString("{ ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s = ", k)
		writeInspect(b, values[k], depth-1, seen)
	}
	b.WriteString(" }")
}

func sleepSeconds(seconds float64) {
	time.Sleep(time.Duration(seconds * float64(time.Second)))
}

func secondsSinceEpoch() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
