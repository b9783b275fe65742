package util

import (
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) *lua.LState {
	t.Helper()
	L := lua.NewState()
	t.Cleanup(L.Close)
	mod, err := New(L)
	require.NoError(t, err)
	L.SetGlobal("util", mod)
	return L
}

func TestInspectFormatsNestedTableDeterministically(t *testing.T) {
	t.Parallel()
	L := newTestState(t)
	err := L.DoString(`result = util.inspect({b = 2, a = {x = 1}})`)
	require.NoError(t, err)
	require.Equal(t, "{ a = { x = 1 }, b = 2 }", L.GetGlobal("result").String())
}

func TestInspectRespectsDepthOption(t *testing.T) {
	t.Parallel()
	L := newTestState(t)
	err := L.DoString(`result = util.inspect({a = {b = {c = 1}}}, {depth = 1})`)
	require.NoError(t, err)
	require.Equal(t, "{ a = {...} }", L.GetGlobal("result").String())
}

func TestTimeReturnsSecondsSinceEpoch(t *testing.T) {
	t.Parallel()
	L := newTestState(t)
	before := float64(time.Now().Unix())
	err := L.DoString(`result = util.time()`)
	require.NoError(t, err)
	after := float64(time.Now().Unix()) + 1
	got := float64(L.GetGlobal("result").(lua.LNumber))
	require.GreaterOrEqual(t, got, before-1)
	require.LessOrEqual(t, got, after)
}

func TestSleepBlocksForApproximatelyTheRequestedDuration(t *testing.T) {
	t.Parallel()
	L := newTestState(t)
	start := time.Now()
	err := L.DoString(`util.sleep(0.05)`)
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}
