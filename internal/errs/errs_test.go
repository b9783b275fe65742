package errs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorStringIsTagPrefixed(t *testing.T) {
	err := New(NotFound, "missing %q", "x.lua")
	require.Equal(t, `NotFound: missing "x.lua"`, err.Error())
}

func TestErrorStringWithNoMessageIsJustTheTag(t *testing.T) {
	err := &Error{Kind: ExecutionError}
	require.Equal(t, "ExecutionError", err.Error())
}

func TestWrapPreservesUnderlyingErrorForUnwrap(t *testing.T) {
	inner := fmt.Errorf("disk full")
	err := Wrap(ExecutionError, inner, "writing file")
	require.Equal(t, inner, err.Unwrap())
	require.Contains(t, err.Error(), "writing file")
}

func TestIsMatchesDirectKind(t *testing.T) {
	err := New(InvalidUrl, "bad url")
	require.True(t, Is(err, InvalidUrl))
	require.False(t, Is(err, NotFound))
}

func TestIsWalksWrappedTaggedErrors(t *testing.T) {
	inner := New(NotFound, "inner")
	outer := Wrap(ExecutionError, inner, "outer")
	require.True(t, Is(outer, ExecutionError))
	require.True(t, Is(outer, NotFound))
}

func TestIsReturnsFalseForPlainError(t *testing.T) {
	require.False(t, Is(fmt.Errorf("plain"), NotFound))
}

func TestIsReturnsFalseForNil(t *testing.T) {
	require.False(t, Is(nil, NotFound))
}
