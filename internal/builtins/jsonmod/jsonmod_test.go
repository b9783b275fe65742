package jsonmod

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
	L.SetGlobal("json", mod)
	return L
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	L := newTestState(t)
	err := L.DoString(`
		local v = {name = "hype", count = 3, tags = {"a", "b"}}
		local encoded = json.encode(v)
		local decoded = json.decode(encoded)
		result = decoded.name
		count = decoded.count
		first_tag = decoded.tags[1]
	`)
	require.NoError(t, err)
	require.Equal(t, "hype", L.GetGlobal("result").String())
	require.Equal(t, lua.LNumber(3), L.GetGlobal("count"))
	require.Equal(t, "a", L.GetGlobal("first_tag").String())
}

func TestDecodeMalformedJSONFailsWithTag(t *testing.T) {
	t.Parallel()
	L := newTestState(t)
	err := L.DoString(`json.decode("{not valid")`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "JsonParseError")
}
