package pathmod

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) *lua.LState {
	t.Helper()
	L := lua.NewState()
	t.Cleanup(L.Close)
	mod, err := New(L)
	require.NoError(t, err)
	L.SetGlobal("path", mod)
	return L
}

func TestJoinNormalizesSeparators(t *testing.T) {
	t.Parallel()
	L := newTestState(t)
	require.NoError(t, L.DoString(`result = path.join("a", "b", "..", "c")`))
	require.Equal(t, "a/c", L.GetGlobal("result").String())
}

func TestDirnameAndBasename(t *testing.T) {
	t.Parallel()
	L := newTestState(t)
	require.NoError(t, L.DoString(`
		d = path.dirname("/a/b/c.lua")
		b = path.basename("/a/b/c.lua")
		e = path.extname("/a/b/c.lua")
	`))
	require.Equal(t, "/a/b", L.GetGlobal("d").String())
	require.Equal(t, "c.lua", L.GetGlobal("b").String())
	require.Equal(t, ".lua", L.GetGlobal("e").String())
}

func TestResolveProducesAbsolutePath(t *testing.T) {
	t.Parallel()
	L := newTestState(t)
	require.NoError(t, L.DoString(`result = path.resolve("foo", "bar.lua")`))
	got := L.GetGlobal("result").String()
	require.True(t, len(got) > 0 && got[0] == '/')
	require.Contains(t, got, "foo/bar.lua")
}
