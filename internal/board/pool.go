package board

import "fmt"

// PoolSize is the number of states a Pool holds.
const PoolSize = 4

// Handle is an exclusive, generation-checked reference to a pooled State.
type Handle struct {
	idx uint8
	gen uint32
}

// Pool is a fixed set of State slots. Acquire hands out an exclusive
// handle; Release makes the slot available again and invalidates the
// handle.
type Pool struct {
	states [PoolSize]State
	gens   [PoolSize]uint32
	used   [PoolSize]bool
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Acquire checks out a free slot. Running out of slots means a caller
// leaked a handle and is fatal.
func (p *Pool) Acquire() Handle {
	for i := range p.used {
		if !p.used[i] {
			p.used[i] = true
			p.gens[i]++
			return Handle{idx: uint8(i), gen: p.gens[i]}
		}
	}
	fatalErr("Pool.Acquire", fmt.Errorf("all %d states checked out: %w", PoolSize, ErrPoolExhausted))
	return Handle{}
}

// Get returns the State behind a live handle.
func (p *Pool) Get(h Handle) *State {
	p.check(h, "Get")
	return &p.states[h.idx]
}

// Release returns a slot to the pool.
func (p *Pool) Release(h Handle) {
	p.check(h, "Release")
	p.used[h.idx] = false
	p.gens[h.idx]++
}

// Available returns the number of free slots.
func (p *Pool) Available() int {
	n := 0
	for _, u := range p.used {
		if !u {
			n++
		}
	}
	return n
}

func (p *Pool) check(h Handle, op string) {
	if int(h.idx) >= PoolSize || !p.used[h.idx] || p.gens[h.idx] != h.gen {
		fatal("Pool."+op, NoSlot, NoSquare, NoSquare, "stale handle (slot %d gen %d)", h.idx, h.gen)
	}
}
