// Package loader implements the module cache, the cycle detector, and
// the loader itself.
package loader

import lua "github.com/yuin/gopher-lua"

// Module is the in-cache record for one loaded (or loading) module.
type Module struct {
	ID       string
	Filename string // absolute path; empty for built-ins
	Dirname  string
	Exports  lua.LValue
	Loading  bool
}

// Cache is the process-wide (really: per-interpreter) id->Module map.
// It is not safe for concurrent use across interpreters; within one
// interpreter all access is serialized by the interpreter's own
// single-threaded execution.
type Cache struct {
	entries map[string]*Module
	order   []string // insertion order, for Stats()/diagnostics only
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Module)}
}

// Get returns the record for id, including one whose Loading is still true
// (a cyclic require hit).
func (c *Cache) Get(id string) (*Module, bool) {
	m, ok := c.entries[id]
	return m, ok
}

// Insert adds a fresh loading=true record before the module body executes,
// so a cyclic require sees the in-progress exports table instead of
// re-entering the module body.
func (c *Cache) Insert(m *Module) {
	if _, exists := c.entries[m.ID]; !exists {
		c.order = append(c.order, m.ID)
	}
	c.entries[m.ID] = m
}

// Remove deletes a cache entry. Used only when compilation/execution fails,
// so a failed module leaves no stale entry behind for a later require to hit.
func (c *Cache) Remove(id string) {
	delete(c.entries, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of cached entries (used by Interpreter.Stats()).
func (c *Cache) Len() int { return len(c.entries) }

// View returns a read-through snapshot of id->exports for require.cache,
// rebuilt fresh on every access since a Lua table can't host a live view.
func (c *Cache) View(L *lua.LState) *lua.LTable {
	t := L.NewTable()
	for _, id := range c.order {
		m := c.entries[id]
		if m.Exports != nil {
			t.RawSetString(id, m.Exports)
		}
	}
	return t
}
