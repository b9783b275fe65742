package httpmod

import (
	"net/http"
	"net/http/httptest"
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
	L.SetGlobal("http", mod)
	return L
}

func TestGetReturnsStatusAndBody(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	L := newTestState(t)
	err := L.DoString(`
		local resp = http.get("` + server.URL + `")
		status = resp.status
		ok = resp.ok
		body = resp:text()
	`)
	require.NoError(t, err)
	require.Equal(t, lua.LNumber(200), L.GetGlobal("status"))
	require.Equal(t, lua.LTrue, L.GetGlobal("ok"))
	require.Equal(t, "hello", L.GetGlobal("body").String())
}

func TestPostJsonSetsContentTypeAndEncodesBody(t *testing.T) {
	t.Parallel()
	var gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	L := newTestState(t)
	err := L.DoString(`resp = http.postJson("` + server.URL + `", {name = "hype"})`)
	require.NoError(t, err)
	require.Equal(t, "application/json", gotContentType)
	require.JSONEq(t, `{"name":"hype"}`, gotBody)
}

func TestJsonMethodParsesResponseBody(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count": 3}`))
	}))
	defer server.Close()

	L := newTestState(t)
	err := L.DoString(`
		local resp = http.get("` + server.URL + `")
		count = resp:json().count
	`)
	require.NoError(t, err)
	require.Equal(t, lua.LNumber(3), L.GetGlobal("count"))
}

func TestMalformedURLFailsWithInvalidUrlTag(t *testing.T) {
	t.Parallel()
	L := newTestState(t)
	err := L.DoString(`http.get("not-a-url")`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "InvalidUrl")
}

func TestGetCookiesReflectsCookieJar(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123"})
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	L := newTestState(t)
	err := L.DoString(`
		http.get("` + server.URL + `")
		cookies = http.getCookies("` + server.URL + `")
	`)
	require.NoError(t, err)
	cookies, ok := L.GetGlobal("cookies").(*lua.LTable)
	require.True(t, ok)
	require.Equal(t, "abc123", cookies.RawGetString("session").String())
}
