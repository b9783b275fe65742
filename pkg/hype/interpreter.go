// Package hype is the public embedding API: construct an Interpreter,
// point it at a script, run it. A Pool manages several independent
// Interpreters for concurrent hosts, each with its own Lua state and
// module cache.
package hype

import (
	lua "github.com/yuin/gopher-lua"

	"hype/internal/builtins/events"
	"hype/internal/builtins/fs"
	"hype/internal/builtins/httpmod"
	"hype/internal/builtins/jsonmod"
	"hype/internal/builtins/pathmod"
	"hype/internal/builtins/process"
	"hype/internal/builtins/tablemod"
	"hype/internal/builtins/util"
	"hype/internal/config"
	"hype/internal/errs"
	"hype/internal/loader"
	"hype/internal/obs"
)

var log = obs.For("hype")

const (
	callStackSize = 120
	registrySize  = 120 * 20
)

// Interpreter owns one Lua state, its own module cache, cycle detector and
// bytecode cache. Interpreters share nothing with each other at the script
// level; each is single-threaded and must not be used from more than one
// goroutine concurrently.
type Interpreter struct {
	L      *lua.LState
	loader *loader.Loader
}

// New constructs an Interpreter with all built-in modules registered.
func New(cfg config.Config) (*Interpreter, error) {
	L := lua.NewState(lua.Options{
		CallStackSize: callStackSize,
		RegistrySize:  registrySize,
	})

	builtins := map[string]loader.BuiltinFactory{
		"fs": fs.New,
		"http": httpmod.NewWithOptions(httpmod.Options{
			Timeout:      cfg.HTTP.Timeout(),
			MaxRedirects: cfg.HTTP.MaxRedirects,
			MaxIdleConns: cfg.HTTP.MaxIdleConns,
		}),
		"path":    pathmod.New,
		"events":  events.New,
		"util":    util.New,
		"table":   tablemod.New,
		"json":    jsonmod.New,
		"process": process.New,
	}

	ld := loader.New(L, builtins)
	return &Interpreter{L: L, loader: ld}, nil
}

// Close releases the underlying Lua state. An Interpreter must not be used
// after Close.
func (i *Interpreter) Close() {
	i.L.Close()
}

// RunScript loads and executes the script at path as the program's entry
// point, returning whatever module.exports ends up holding.
func (i *Interpreter) RunScript(path string) (lua.LValue, error) {
	exports, err := i.loader.LoadMain(path)
	if err != nil {
		log.WithField("script", path).WithError(err).Warn("script_failed")
		return nil, errs.Wrap(errs.ExecutionError, err, "running %q", path)
	}
	return exports, nil
}

// Stats reports module/bytecode cache occupancy for this interpreter.
func (i *Interpreter) Stats() loader.Stats {
	return i.loader.Stats()
}
