package bridge

import (
	"errors"
	"testing"

	lua "github.com/yuin/gopher-lua"
	"github.com/stretchr/testify/require"

	"hype/internal/errs"
)

func TestSetStringFieldsAssignsEveryEntry(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	tbl := L.NewTable()
	SetStringFields(tbl, map[string]string{"a": "1", "b": "2"})

	require.Equal(t, lua.LString("1"), tbl.RawGetString("a"))
	require.Equal(t, lua.LString("2"), tbl.RawGetString("b"))
}

func TestNewStringArrayIsOneBased(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	arr := NewStringArray(L, []string{"x", "y", "z"})
	require.Equal(t, lua.LString("x"), arr.RawGetInt(1))
	require.Equal(t, lua.LString("y"), arr.RawGetInt(2))
	require.Equal(t, lua.LString("z"), arr.RawGetInt(3))
	require.Equal(t, 3, arr.Len())
}

func TestNewStringMapBuildsLookupTable(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	m := NewStringMap(L, map[string]string{"content-type": "text/plain"})
	require.Equal(t, lua.LString("text/plain"), m.RawGetString("content-type"))
}

func TestFuncWrapsGoFunctionCallableFromLua(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	double := func(n int) int { return n * 2 }
	L.SetGlobal("double", Func(L, double))

	require.NoError(t, L.DoString(`result = double(21)`))
	require.Equal(t, lua.LNumber(42), L.GetGlobal("result"))
}

func TestFuncConvertsTrailingErrorToLuaError(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	failing := func() (int, error) { return 0, errors.New("boom") }
	L.SetGlobal("failing", Func(L, failing))

	err := L.DoString(`failing()`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
}

func TestRaisePrefixesTaggedErrors(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	L.SetGlobal("trigger", L.NewFunction(func(L *lua.LState) int {
		return Raise(L, errs.New(errs.NotFound, "missing %q", "x.lua"))
	}))

	err := L.DoString(`trigger()`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "NotFound")
	require.Contains(t, err.Error(), "x.lua")
}
