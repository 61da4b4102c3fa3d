package board

import (
	"errors"
	"testing"

	"github.com/bsumner2/gbachess/internal/testutil"
)

func TestPoolAcquireRelease(t *testing.T) {
	p := NewPool()
	var handles []Handle
	for i := 0; i < PoolSize; i++ {
		h := p.Acquire()
		*p.Get(h) = *NewGame()
		handles = append(handles, h)
	}
	if p.Available() != 0 {
		t.Errorf("Available = %d, want 0", p.Available())
	}

	r := testutil.AssertPanics(t, func() { p.Acquire() })
	if ie, ok := r.(*InvariantError); !ok || !errors.Is(ie, ErrPoolExhausted) {
		t.Errorf("recovered %v, want pool exhausted", r)
	}

	p.Release(handles[0])
	if p.Available() != 1 {
		t.Errorf("Available = %d, want 1", p.Available())
	}
	h := p.Acquire()
	if h == handles[0] {
		t.Error("reacquired slot reuses the old handle")
	}
}

func TestPoolStaleHandle(t *testing.T) {
	p := NewPool()
	h := p.Acquire()
	p.Release(h)
	testutil.AssertPanics(t, func() { p.Get(h) })
	testutil.AssertPanics(t, func() { p.Release(h) })
}

func TestPoolStatesAreIndependent(t *testing.T) {
	p := NewPool()
	a, b := p.Acquire(), p.Acquire()
	*p.Get(a) = *NewGame()
	*p.Get(b) = *p.Get(a)
	play(t, p.Get(b), "e2e4")
	if p.Get(a).Hash == p.Get(b).Hash {
		t.Error("move on one pooled state changed the other")
	}
}
