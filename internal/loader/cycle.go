package loader

import "hype/internal/errs"

// CycleDetector tracks the ids currently "loading" along the current require
// chain within one interpreter. The cache-hit-while-loading check in the
// loader is the actual cycle signal; this stack exists to make enter/leave
// symmetric and to give good diagnostics, and because an interpreter is
// single-threaded so exactly one chain is ever active here at a time (unlike
// the cache, which is shared but keyed by id regardless of chain).
type CycleDetector struct {
	stack []string
	index map[string]int
}

func NewCycleDetector() *CycleDetector {
	return &CycleDetector{index: make(map[string]int)}
}

// Enter pushes id onto the current chain. Returns an error only if called
// twice for the same id without an intervening Leave — which should never
// happen in practice because the loader checks the cache for a loading=true
// hit before ever calling Enter (see Loader.loadPath).
func (d *CycleDetector) Enter(id string) error {
	if _, already := d.index[id]; already {
		return errs.New(errs.CircularDependency, "module %q re-entered its own loading chain", id)
	}
	d.index[id] = len(d.stack)
	d.stack = append(d.stack, id)
	return nil
}

// Leave pops id off the current chain.
func (d *CycleDetector) Leave(id string) {
	if i, ok := d.index[id]; ok && i == len(d.stack)-1 {
		d.stack = d.stack[:i]
		delete(d.index, id)
	}
}

// Chain returns a snapshot of the current loading chain, most recent last.
func (d *CycleDetector) Chain() []string {
	out := make([]string, len(d.stack))
	copy(out, d.stack)
	return out
}
