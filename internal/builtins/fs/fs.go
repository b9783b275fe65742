// Package fs is the `fs` built-in module: synchronous filesystem operations
// bound directly to Go's os package (os.ReadFile, os.Stat, os.MkdirAll)
// rather than through an intermediate abstraction.
package fs

import (
	"io/fs"
	"os"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"hype/internal/bridge"
	"hype/internal/errs"
	"hype/internal/obs"
)

var log = obs.For("builtin.fs")

// New builds the fs module table. It satisfies loader.BuiltinFactory.
func New(L *lua.LState) (lua.LValue, error) {
	t := L.NewTable()
	t.RawSetString("readFileSync", L.NewFunction(readFileSync))
	t.RawSetString("writeFileSync", L.NewFunction(writeFileSync))
	t.RawSetString("existsSync", L.NewFunction(existsSync))
	t.RawSetString("statSync", L.NewFunction(statSync))
	t.RawSetString("readdirSync", L.NewFunction(readdirSync))
	t.RawSetString("unlinkSync", L.NewFunction(unlinkSync))
	t.RawSetString("mkdirSync", L.NewFunction(mkdirSync))
	t.RawSetString("rmdirSync", L.NewFunction(rmdirSync))
	return t, nil
}

func readFileSync(L *lua.LState) int {
	path := L.CheckString(1)
	if err := checkPath(path); err != nil {
		return bridge.Raise(L, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return bridge.Raise(L, wrapOSErr(path, err))
	}
	L.Push(lua.LString(string(data)))
	return 1
}

func writeFileSync(L *lua.LState) int {
	path := L.CheckString(1)
	data := L.CheckString(2)
	if err := checkPath(path); err != nil {
		return bridge.Raise(L, err)
	}

	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode()
	}
	if err := os.WriteFile(path, []byte(data), mode); err != nil {
		log.WithField("path", path).WithError(err).Warn("write_file_failed")
		return bridge.Raise(L, wrapOSErr(path, err))
	}
	return 0
}

func existsSync(L *lua.LState) int {
	path := L.CheckString(1)
	if err := checkPath(path); err != nil {
		return bridge.Raise(L, err)
	}
	_, err := os.Stat(path)
	L.Push(lua.LBool(err == nil))
	return 1
}

func statSync(L *lua.LState) int {
	path := L.CheckString(1)
	if err := checkPath(path); err != nil {
		return bridge.Raise(L, err)
	}
	fi, err := os.Lstat(path)
	if err != nil {
		return bridge.Raise(L, wrapOSErr(path, err))
	}

	isSymlink := fi.Mode()&os.ModeSymlink != 0
	// For a symlink, size/isFile/isDirectory describe the link target when
	// it resolves, falling back to the link's own info otherwise.
	target := fi
	if isSymlink {
		if resolved, err := os.Stat(path); err == nil {
			target = resolved
		}
	}

	rec := L.NewTable()
	rec.RawSetString("size", lua.LNumber(target.Size()))
	rec.RawSetString("isFile", lua.LBool(target.Mode().IsRegular()))
	rec.RawSetString("isDirectory", lua.LBool(target.IsDir()))
	rec.RawSetString("isSymlink", lua.LBool(isSymlink))
	rec.RawSetString("mtime", lua.LNumber(fi.ModTime().Unix()))
	L.Push(rec)
	return 1
}

func readdirSync(L *lua.LState) int {
	path := L.CheckString(1)
	if err := checkPath(path); err != nil {
		return bridge.Raise(L, err)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return bridge.Raise(L, wrapOSErr(path, err))
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	sort.Strings(names)
	L.Push(bridge.NewStringArray(L, names))
	return 1
}

func unlinkSync(L *lua.LState) int {
	path := L.CheckString(1)
	if err := checkPath(path); err != nil {
		return bridge.Raise(L, err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return bridge.Raise(L, wrapOSErr(path, err))
	}
	if fi.IsDir() {
		return bridge.Raise(L, errs.New(errs.InvalidOperation, "unlinkSync: %q is a directory", path))
	}
	if err := os.Remove(path); err != nil {
		return bridge.Raise(L, wrapOSErr(path, err))
	}
	return 0
}

func mkdirSync(L *lua.LState) int {
	path := L.CheckString(1)
	if err := checkPath(path); err != nil {
		return bridge.Raise(L, err)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return bridge.Raise(L, wrapOSErr(path, err))
	}
	return 0
}

func rmdirSync(L *lua.LState) int {
	path := L.CheckString(1)
	if err := checkPath(path); err != nil {
		return bridge.Raise(L, err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return bridge.Raise(L, wrapOSErr(path, err))
	}
	if !fi.IsDir() {
		return bridge.Raise(L, errs.New(errs.InvalidOperation, "rmdirSync: %q is not a directory", path))
	}
	if err := os.Remove(path); err != nil {
		if isNotEmpty(err) {
			return bridge.Raise(L, errs.New(errs.InvalidOperation, "rmdirSync: %q is not empty", path))
		}
		return bridge.Raise(L, wrapOSErr(path, err))
	}
	return 0
}

func isNotEmpty(err error) bool {
	var pathErr *fs.PathError
	return errorAs(err, &pathErr) && pathErr.Err.Error() == "directory not empty"
}

func errorAs(err error, target **fs.PathError) bool {
	pe, ok := err.(*fs.PathError)
	if ok {
		*target = pe
	}
	return ok
}

// checkPath rejects a path containing an embedded null byte before it ever
// reaches a syscall.
func checkPath(path string) error {
	if strings.IndexByte(path, 0) >= 0 {
		return errs.New(errs.InvalidPath, "path %q contains a null byte", path)
	}
	return nil
}

// wrapOSErr classifies an os error from any operation -- read or write --
// into the matching tagged error.
func wrapOSErr(path string, err error) error {
	if os.IsNotExist(err) {
		return errs.Wrap(errs.NotFound, err, "%q", path)
	}
	if os.IsPermission(err) {
		return errs.Wrap(errs.PermissionDenied, err, "%q", path)
	}
	return errs.Wrap(errs.ExecutionError, err, "%q", path)
}
