// Package tablemod is the `table` built-in module: shallow merge/clone and
// keys/values extraction over Lua tables.
package tablemod

import (
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// New builds the table module table. It satisfies loader.BuiltinFactory.
func New(L *lua.LState) (lua.LValue, error) {
	t := L.NewTable()
	t.RawSetString("merge", L.NewFunction(merge))
	t.RawSetString("clone", L.NewFunction(clone))
	t.RawSetString("keys", L.NewFunction(keys))
	t.RawSetString("values", L.NewFunction(values))
	return t, nil
}

func merge(L *lua.LState) int {
	a := L.CheckTable(1)
	b := L.CheckTable(2)
	out := L.NewTable()
	a.ForEach(func(k, v lua.LValue) { out.RawSet(k, v) })
	b.ForEach(func(k, v lua.LValue) { out.RawSet(k, v) })
	L.Push(out)
	return 1
}

func clone(L *lua.LState) int {
	a := L.CheckTable(1)
	out := L.NewTable()
	a.ForEach(func(k, v lua.LValue) { out.RawSet(k, v) })
	L.Push(out)
	return 1
}

func keys(L *lua.LState) int {
	t := L.CheckTable(1)
	names := make([]string, 0)
	t.ForEach(func(k, _ lua.LValue) { names = append(names, k.String()) })
	sort.Strings(names)
	out := L.CreateTable(len(names), 0)
	for i, k := range names {
		out.RawSetInt(i+1, lua.LString(k))
	}
	L.Push(out)
	return 1
}

func values(L *lua.LState) int {
	t := L.CheckTable(1)
	type pair struct {
		key string
		val lua.LValue
	}
	pairs := make([]pair, 0)
	t.ForEach(func(k, v lua.LValue) { pairs = append(pairs, pair{k.String(), v}) })
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })
	out := L.CreateTable(len(pairs), 0)
	for i, p := range pairs {
		out.RawSetInt(i+1, p.val)
	}
	L.Push(out)
	return 1
}
