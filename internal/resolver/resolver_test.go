package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func isBuiltin(names ...string) IsBuiltin {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestResolveBuiltinNameTakesPriorityOverFilesystem(t *testing.T) {
	r := New(isBuiltin("fs"))
	res, err := r.Resolve("fs", t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "fs", res.BuiltinName)
	require.Empty(t, res.Filename)
}

func TestResolveRelativePathPrefersExactFileOverLuaExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "thing"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "thing.lua"), []byte(""), 0o644))

	r := New(nil)
	res, err := r.Resolve("./thing", dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "thing"), res.Filename)
}

func TestResolveRelativePathFallsBackToLuaExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "thing.lua"), []byte(""), 0o644))

	r := New(nil)
	res, err := r.Resolve("./thing", dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "thing.lua"), res.Filename)
}

func TestResolveDirectoryFallsBackToIndexLua(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "index.lua"), []byte(""), 0o644))

	r := New(nil)
	res, err := r.Resolve("./pkg", dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(sub, "index.lua"), res.Filename)
}

func TestResolveDirectoryWithManifestUsesMainField(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "hype.json"), []byte(`{"name":"pkg","version":"1.0.0","main":"lib.lua"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "lib.lua"), []byte(""), 0o644))

	r := New(nil)
	res, err := r.Resolve("./pkg", dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(sub, "lib.lua"), res.Filename)
}

func TestResolveRelativePathMissingFailsWithSearchedList(t *testing.T) {
	dir := t.TempDir()
	r := New(nil)
	_, err := r.Resolve("./nope", dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ModuleNotFound")
	require.Contains(t, err.Error(), "Searched:")
}

func TestResolvePackageWalksUpToAncestorHypeModules(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	pkgDir := filepath.Join(root, "hype_modules", "leftpad")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "index.lua"), []byte(""), 0o644))

	r := New(nil)
	res, err := r.Resolve("leftpad", nested)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(pkgDir, "index.lua"), res.Filename)
}

func TestResolvePackageNearestAncestorWinsOverFartherOne(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	farPkg := filepath.Join(root, "hype_modules", "dep")
	require.NoError(t, os.MkdirAll(farPkg, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(farPkg, "index.lua"), []byte("far"), 0o644))

	nearPkg := filepath.Join(root, "a", "hype_modules", "dep")
	require.NoError(t, os.MkdirAll(nearPkg, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nearPkg, "index.lua"), []byte("near"), 0o644))

	r := New(nil)
	res, err := r.Resolve("dep", nested)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(nearPkg, "index.lua"), res.Filename)
}

func TestResolvePackageFallsBackToHomeModulesDir(t *testing.T) {
	home := t.TempDir()
	pkgDir := filepath.Join(home, ".hype", "modules", "globaldep")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "index.lua"), []byte(""), 0o644))

	from := t.TempDir()
	r := New(nil).WithHomeDir(home)
	res, err := r.Resolve("globaldep", from)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(pkgDir, "index.lua"), res.Filename)
}

func TestResolvePackageUnresolvedFallsBackToBuiltinIfNamed(t *testing.T) {
	from := t.TempDir()
	r := New(isBuiltin("json")).WithHomeDir(t.TempDir())
	res, err := r.Resolve("json", from)
	require.NoError(t, err)
	require.Equal(t, "json", res.BuiltinName)
}

func TestResolvePackageNotFoundAnywhereFails(t *testing.T) {
	from := t.TempDir()
	r := New(nil).WithHomeDir(t.TempDir())
	_, err := r.Resolve("missing-pkg", from)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ModuleNotFound")
}

func TestResolveNullByteInIDFailsWithInvalidPath(t *testing.T) {
	r := New(nil)
	_, err := r.Resolve("./thi\x00ng", t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "InvalidPath")
}
