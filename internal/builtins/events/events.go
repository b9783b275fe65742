// Package events is the `events` built-in module: a minimal emitter with
// new(), on(), off() and emit(), handlers invoked in registration order.
package events

import lua "github.com/yuin/gopher-lua"

const emitterMetatableName = "hype.events.emitter"

// New builds the events module table. It satisfies loader.BuiltinFactory.
func New(L *lua.LState) (lua.LValue, error) {
	mt := L.NewTypeMetatable(emitterMetatableName)
	mt.RawSetString("__index", L.NewFunction(emitterIndex))

	t := L.NewTable()
	t.RawSetString("new", L.NewFunction(func(L *lua.LState) int {
		ud := L.NewUserData()
		ud.Value = newEmitter()
		L.SetMetatable(ud, mt)
		L.Push(ud)
		return 1
	}))
	return t, nil
}

type handler struct {
	fn lua.LValue
}

type emitter struct {
	handlers map[string][]handler
}

func newEmitter() *emitter {
	return &emitter{handlers: make(map[string][]handler)}
}

func emitterIndex(L *lua.LState) int {
	ud := L.CheckUserData(1)
	key := L.CheckString(2)
	switch key {
	case "on":
		L.Push(L.NewFunction(emitterOn))
	case "off":
		L.Push(L.NewFunction(emitterOff))
	case "emit":
		L.Push(L.NewFunction(emitterEmit))
	default:
		L.Push(lua.LNil)
	}
	_ = ud
	return 1
}

func emitterOn(L *lua.LState) int {
	ud := L.CheckUserData(1)
	e := ud.Value.(*emitter)
	event := L.CheckString(2)
	fn := L.CheckFunction(3)
	e.handlers[event] = append(e.handlers[event], handler{fn: fn})
	return 0
}

func emitterOff(L *lua.LState) int {
	ud := L.CheckUserData(1)
	e := ud.Value.(*emitter)
	event := L.CheckString(2)

	if L.GetTop() < 3 {
		delete(e.handlers, event)
		return 0
	}
	target := L.CheckFunction(3)
	kept := e.handlers[event][:0]
	for _, h := range e.handlers[event] {
		if h.fn != target {
			kept = append(kept, h)
		}
	}
	e.handlers[event] = kept
	return 0
}

func emitterEmit(L *lua.LState) int {
	ud := L.CheckUserData(1)
	e := ud.Value.(*emitter)
	event := L.CheckString(2)

	args := make([]lua.LValue, 0, L.GetTop()-2)
	for i := 3; i <= L.GetTop(); i++ {
		args = append(args, L.Get(i))
	}

	for _, h := range e.handlers[event] {
		L.Push(h.fn)
		for _, a := range args {
			L.Push(a)
		}
		L.Call(len(args), 0)
	}
	return 0
}
