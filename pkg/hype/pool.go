package hype

import (
	"sync"

	"hype/internal/config"
)

// Pool manages a fixed number of independent Interpreters for hosts that
// serve concurrent callers. Each Interpreter is single-threaded internally,
// so the pool is the unit of concurrency: a caller checks one out, uses it
// exclusively, and returns it.
type Pool struct {
	cfg     config.Config
	pool    chan *Interpreter
	maxSize int
	mu      sync.Mutex
	created int
	closed  bool
}

// NewPool creates a pool of at most cfg.Pool.Size interpreters, all built
// with cfg. Interpreters are created lazily, on first Get, up to that limit.
func NewPool(cfg config.Config) *Pool {
	size := cfg.Pool.Size
	if size <= 0 {
		size = config.Default().Pool.Size
	}
	return &Pool{
		cfg:     cfg,
		pool:    make(chan *Interpreter, size),
		maxSize: size,
	}
}

// Get returns an idle Interpreter, creating a new one if the pool has not
// yet reached its configured size, or blocking until one is returned
// otherwise.
func (p *Pool) Get() (*Interpreter, error) {
	select {
	case i := <-p.pool:
		return i, nil
	default:
		p.mu.Lock()
		if p.created < p.maxSize {
			p.created++
			p.mu.Unlock()
			i, err := New(p.cfg)
			if err != nil {
				p.mu.Lock()
				p.created--
				p.mu.Unlock()
				return nil, err
			}
			return i, nil
		}
		p.mu.Unlock()
		return <-p.pool, nil
	}
}

// Put returns an Interpreter to the pool. If the pool has been closed, or is
// already full, the Interpreter is closed instead of retained.
func (p *Pool) Put(i *Interpreter) {
	if i == nil {
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		i.Close()
		p.mu.Lock()
		p.created--
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	select {
	case p.pool <- i:
	default:
		i.Close()
		p.mu.Lock()
		p.created--
		p.mu.Unlock()
	}
}

// Close closes every idle Interpreter currently held by the pool and marks
// it closed; Interpreters already checked out are closed when returned via
// Put instead.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	close(p.pool)
	for i := range p.pool {
		i.Close()
	}
}
