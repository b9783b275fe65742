package loader

import (
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"hype/internal/errs"
	"hype/internal/obs"
	"hype/internal/resolver"
)

var log = obs.For("loader")

const defaultProtoCacheSize = 256

// BuiltinFactory builds the exports value for a built-in module the first
// time it is required. It runs at most once per interpreter; the result is
// cached like any other module.
type BuiltinFactory func(L *lua.LState) (lua.LValue, error)

// Loader ties the resolver, cache, cycle detector and bytecode cache
// together and installs `require` into a Lua state.
type Loader struct {
	L        *lua.LState
	resolver *resolver.Resolver
	cache    *Cache
	cycles   *CycleDetector
	builtins map[string]BuiltinFactory
	protos   *lru.Cache[string, *lua.FunctionProto]
	mainID   string
}

// New creates a Loader bound to one Lua state and installs `require` as a
// global. builtins maps a built-in name to its factory.
func New(L *lua.LState, builtins map[string]BuiltinFactory) *Loader {
	protos, _ := lru.New[string, *lua.FunctionProto](defaultProtoCacheSize)
	ld := &Loader{
		L:        L,
		cache:    NewCache(),
		cycles:   NewCycleDetector(),
		builtins: builtins,
		protos:   protos,
	}
	ld.resolver = resolver.New(func(name string) bool {
		_, ok := ld.builtins[name]
		return ok
	})
	ld.installRequire(L, L.G.Global, "")
	return ld
}

// Stats reports cache/bytecode occupancy.
type Stats struct {
	ModulesCached int
	ProtosCached  int
	BuiltinsKnown int
}

func (ld *Loader) Stats() Stats {
	return Stats{
		ModulesCached: ld.cache.Len(),
		ProtosCached:  ld.protos.Len(),
		BuiltinsKnown: len(ld.builtins),
	}
}

// LoadMain loads the top-level script at path and records it as require.main.
func (ld *Loader) LoadMain(path string) (lua.LValue, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errs.Wrap(errs.ExecutionError, err, "resolving entry script path")
	}
	ld.mainID = abs
	return ld.loadPath(abs)
}

// require(id) as called from within module `fromDir`.
func (ld *Loader) require(id, fromDir string) (lua.LValue, error) {
	res, err := ld.resolver.Resolve(id, fromDir)
	if err != nil {
		return nil, err
	}
	if res.BuiltinName != "" {
		return ld.loadBuiltin(res.BuiltinName)
	}
	return ld.loadPath(res.Filename)
}

func (ld *Loader) loadBuiltin(name string) (lua.LValue, error) {
	if m, ok := ld.cache.Get(name); ok {
		return m.Exports, nil
	}
	factory, ok := ld.builtins[name]
	if !ok {
		return nil, errs.New(errs.ModuleNotFound, "no such built-in module %q", name)
	}
	exports, err := factory(ld.L)
	if err != nil {
		return nil, errs.Wrap(errs.ExecutionError, err, "initializing built-in %q", name)
	}
	ld.cache.Insert(&Module{ID: name, Exports: exports, Loading: false})
	return exports, nil
}

// loadPath loads a filesystem module by its resolved absolute path:
// check the cache (catching a cyclic require as a loading=true hit),
// insert a loading placeholder, compile, run in its own environment,
// then record whatever module.exports ends up holding.
func (ld *Loader) loadPath(id string) (lua.LValue, error) {
	// Step 1: cache hit, including a loading=true cyclic hit.
	if m, ok := ld.cache.Get(id); ok {
		return m.Exports, nil
	}

	// Step 2: enter the cycle-detection chain.
	if err := ld.cycles.Enter(id); err != nil {
		return nil, err
	}
	defer ld.cycles.Leave(id)

	// Step 3: fresh record, exports = {}, loading = true, inserted immediately.
	dirname := filepath.Dir(id)
	exportsTable := ld.L.NewTable()
	record := &Module{
		ID:       id,
		Filename: id,
		Dirname:  dirname,
		Exports:  exportsTable,
		Loading:  true,
	}
	ld.cache.Insert(record)

	fn, err := ld.compile(id)
	if err != nil {
		ld.cache.Remove(id)
		log.WithField("module", id).WithError(err).Warn("module_compile_failed")
		return nil, err
	}

	// Step 4: module environment.
	moduleTable := ld.L.NewTable()
	moduleTable.RawSetString("exports", exportsTable)
	moduleTable.RawSetString("id", lua.LString(id))
	moduleTable.RawSetString("filename", lua.LString(id))
	env := ld.newModuleEnv(dirname, moduleTable, exportsTable)
	fn.Env = env

	// Steps 5-6: execute the compiled chunk in that environment.
	ld.L.Push(fn)
	if err := ld.L.PCall(0, 0, nil); err != nil {
		ld.cache.Remove(id)
		log.WithField("module", id).WithError(err).Warn("module_execution_failed")
		return nil, errs.Wrap(errs.ExecutionError, err, "module %q", id)
	}
	log.WithField("module", id).Debug("module_loaded")

	// Step 7: read the final value of module.exports (may have been
	// reassigned by the module body).
	finalExports := moduleTable.RawGetString("exports")
	record.Exports = finalExports
	record.Loading = false

	return finalExports, nil
}

// compile parses and compiles the module's source into a fresh LFunction,
// using a bounded LRU of *FunctionProto keyed by canonical id so repeat
// loads (impossible for a single require, but relevant once callers support
// reload-on-demand hosts) skip re-parsing.
func (ld *Loader) compile(id string) (*lua.LFunction, error) {
	if proto, ok := ld.protos.Get(id); ok {
		return ld.L.NewFunctionFromProto(proto), nil
	}

	src, err := os.ReadFile(id)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.NotFound, err, "module %q", id)
		}
		return nil, errs.Wrap(errs.ExecutionError, err, "reading module %q", id)
	}

	chunk, err := parse.Parse(strings.NewReader(string(src)), id)
	if err != nil {
		return nil, errs.Wrap(errs.CompileError, err, "parsing %q", id)
	}
	proto, err := lua.Compile(chunk, id)
	if err != nil {
		return nil, errs.Wrap(errs.CompileError, err, "compiling %q", id)
	}
	ld.protos.Add(id, proto)

	return ld.L.NewFunctionFromProto(proto), nil
}

// newModuleEnv builds the per-module global scope: standard globals are
// reached through the __index fallback to the real global table; require,
// module, exports, __filename and __dirname are own fields of this table.
func (ld *Loader) newModuleEnv(dirname string, moduleTable *lua.LTable, exports lua.LValue) *lua.LTable {
	env := ld.L.NewTable()
	mt := ld.L.NewTable()
	mt.RawSetString("__index", ld.L.G.Global)
	ld.L.SetMetatable(env, mt)

	env.RawSetString("module", moduleTable)
	env.RawSetString("exports", exports)
	env.RawSetString("__filename", lua.LString(moduleTable.RawGetString("filename").String()))
	env.RawSetString("__dirname", lua.LString(dirname))

	ld.installRequire(ld.L, env, dirname)
	return env
}

// installRequire creates a `require` callable (with .cache/.resolve/.main
// properties, implemented via a __call/__index metatable since Lua
// functions, unlike JS ones, cannot carry their own fields) bound to fromDir,
// and sets it on scope.
func (ld *Loader) installRequire(L *lua.LState, scope *lua.LTable, fromDir string) {
	reqTable := L.NewTable()
	mt := L.NewTable()

	callFn := L.NewFunction(func(L *lua.LState) int {
		// args[1] is reqTable itself (the __call receiver); the id is args[2].
		id := L.CheckString(2)
		exports, err := ld.require(id, fromDir)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(exports)
		return 1
	})
	mt.RawSetString("__call", callFn)

	indexFn := L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(2)
		switch key {
		case "cache":
			L.Push(ld.cache.View(L))
		case "resolve":
			L.Push(L.NewFunction(func(L *lua.LState) int {
				id := L.CheckString(1)
				res, err := ld.resolver.Resolve(id, fromDir)
				if err != nil {
					L.RaiseError("%s", err.Error())
					return 0
				}
				if res.BuiltinName != "" {
					L.Push(lua.LString(res.BuiltinName))
				} else {
					L.Push(lua.LString(res.Filename))
				}
				return 1
			}))
		case "main":
			if ld.mainID == "" {
				L.Push(lua.LNil)
			} else {
				L.Push(lua.LString(ld.mainID))
			}
		default:
			L.Push(lua.LNil)
		}
		return 1
	})
	mt.RawSetString("__index", indexFn)

	L.SetMetatable(reqTable, mt)
	scope.RawSetString("require", reqTable)
}
