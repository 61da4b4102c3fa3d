// Package arena provides a fixed-capacity first-fit allocator for short-lived
// buffers. All memory is reserved up front; Alloc and Release never touch
// the Go heap.
package arena

import (
	"errors"
	"fmt"
	"sort"
)

// ErrOutOfMemory is returned when no free block is large enough.
var ErrOutOfMemory = errors.New("arena: out of memory")

// ErrInvalidSize is returned for non-positive allocation requests.
var ErrInvalidSize = errors.New("arena: invalid allocation size")

// Buffer is a handle to an allocated block. Handles carry the generation of
// their block, so using one after Release panics instead of aliasing a
// newer allocation.
type Buffer struct {
	off int32
	n   int32
	gen uint32
}

// Len returns the number of units in the buffer.
func (b Buffer) Len() int {
	return int(b.n)
}

// IsZero reports whether b is the zero handle.
func (b Buffer) IsZero() bool {
	return b.gen == 0
}

type span struct {
	off int
	n   int
}

// Arena is a first-fit free-list allocator over a fixed backing slice. The
// free list is kept in address order and adjacent free blocks are merged on
// release.
type Arena[T any] struct {
	units []T
	free  []span   // address ordered
	size  []int32  // block length at each allocated block start, else 0
	gen   []uint32 // block generation at each offset
	inUse int
	peak  int
}

// New creates an arena holding the given number of units.
func New[T any](units int) *Arena[T] {
	if units <= 0 {
		panic(fmt.Sprintf("arena: capacity must be positive, got %d", units))
	}
	a := &Arena[T]{
		units: make([]T, units),
		free:  make([]span, 0, units/2+2),
		size:  make([]int32, units),
		gen:   make([]uint32, units),
	}
	a.free = append(a.free, span{off: 0, n: units})
	return a
}

// Alloc reserves n contiguous units using the first free block that fits.
// The block is carved from the tail of the free span so the span itself
// stays in place.
func (a *Arena[T]) Alloc(n int) (Buffer, error) {
	if n <= 0 {
		return Buffer{}, ErrInvalidSize
	}
	for i := range a.free {
		s := &a.free[i]
		if s.n < n {
			continue
		}
		off := s.off + s.n - n
		if s.n == n {
			a.free = append(a.free[:i], a.free[i+1:]...)
		} else {
			s.n -= n
		}
		a.size[off] = int32(n)
		a.gen[off]++
		if a.gen[off] == 0 {
			a.gen[off] = 1
		}
		a.inUse += n
		if a.inUse > a.peak {
			a.peak = a.inUse
		}
		return Buffer{off: int32(off), n: int32(n), gen: a.gen[off]}, nil
	}
	return Buffer{}, fmt.Errorf("%w: requested %d units, %d of %d in use",
		ErrOutOfMemory, n, a.inUse, len(a.units))
}

// Release returns a block to the free list, merging it with the free blocks
// directly before and after it.
func (a *Arena[T]) Release(b Buffer) {
	off, n := a.check(b, "release")

	clear(a.units[off : off+n])
	a.size[off] = 0
	a.gen[off]++
	a.inUse -= n

	i := sort.Search(len(a.free), func(i int) bool { return a.free[i].off > off })

	mergePrev := i > 0 && a.free[i-1].off+a.free[i-1].n == off
	mergeNext := i < len(a.free) && off+n == a.free[i].off

	switch {
	case mergePrev && mergeNext:
		a.free[i-1].n += n + a.free[i].n
		a.free = append(a.free[:i], a.free[i+1:]...)
	case mergePrev:
		a.free[i-1].n += n
	case mergeNext:
		a.free[i].off = off
		a.free[i].n += n
	default:
		a.free = append(a.free, span{})
		copy(a.free[i+1:], a.free[i:])
		a.free[i] = span{off: off, n: n}
	}
}

// Slice returns the units of a live buffer.
func (a *Arena[T]) Slice(b Buffer) []T {
	off, n := a.check(b, "slice")
	return a.units[off : off+n : off+n]
}

func (a *Arena[T]) check(b Buffer, op string) (int, int) {
	off, n := int(b.off), int(b.n)
	if b.gen == 0 || off < 0 || off >= len(a.units) ||
		a.gen[off] != b.gen || int(a.size[off]) != n {
		panic(fmt.Sprintf("arena: %s of stale or foreign buffer (off=%d len=%d gen=%d)", op, off, n, b.gen))
	}
	return off, n
}

// InUse returns the number of allocated units.
func (a *Arena[T]) InUse() int {
	return a.inUse
}

// Peak returns the high-water mark of allocated units.
func (a *Arena[T]) Peak() int {
	return a.peak
}

// Cap returns the total capacity in units.
func (a *Arena[T]) Cap() int {
	return len(a.units)
}

// FreeBlocks returns the number of spans on the free list.
func (a *Arena[T]) FreeBlocks() int {
	return len(a.free)
}
