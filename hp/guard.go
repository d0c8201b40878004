// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hp

import "sync/atomic"

// Guard publishes a single hazard pointer for the lifetime between
// NewGuard and Release, protecting whatever *T it currently holds from
// reclamation by any goroutine's Scan.
type Guard[T any] struct {
	rec  *ThreadRecord[T]
	slot *hazardSlot[T]
}

// NewGuard allocates a guard slot from rec's free pool. Panics if rec has
// none left; size the record's hazardPtrCount for the maximum number of
// guards any one goroutine holds concurrently.
func NewGuard[T any](rec *ThreadRecord[T]) *Guard[T] {
	return &Guard[T]{rec: rec, slot: rec.allocSlot()}
}

// Protect publishes src's current value, re-reads src, and repeats until
// the two reads agree, the standard hazard-pointer publish/validate loop.
// The returned pointer is safe to dereference until Release (or the next
// Protect on this guard) is called, even if some other goroutine retires it
// in the meantime: Scan will see it in the hazard set and defer reclaiming
// it.
func (g *Guard[T]) Protect(src *atomic.Pointer[T]) *T {
	for {
		p := src.Load()
		g.slot.ptr.Store(p)
		if p2 := src.Load(); p2 == p {
			return p
		}
	}
}

// Release un-publishes the guard's pointer and returns the slot to the
// thread record's free pool.
func (g *Guard[T]) Release() {
	if g.slot == nil {
		return
	}
	g.rec.freeSlot(g.slot)
	g.slot = nil
}

// GuardSet is N independently releasable guards allocated from the same
// thread record, for algorithms (like the Michael-Scott dequeue) that must
// hold more than one hazard pointer at a time, such as protecting both head
// and head.next across the CAS that advances head.
type GuardSet[T any] struct {
	rec   *ThreadRecord[T]
	slots []*hazardSlot[T]
}

// NewGuardSet allocates n guard slots from rec.
func NewGuardSet[T any](rec *ThreadRecord[T], n int) *GuardSet[T] {
	slots := make([]*hazardSlot[T], n)
	for i := range slots {
		slots[i] = rec.allocSlot()
	}
	return &GuardSet[T]{rec: rec, slots: slots}
}

// Protect runs the publish/validate loop for slot i, same contract as
// Guard.Protect.
func (gs *GuardSet[T]) Protect(i int, src *atomic.Pointer[T]) *T {
	for {
		p := src.Load()
		gs.slots[i].ptr.Store(p)
		if p2 := src.Load(); p2 == p {
			return p
		}
	}
}

// Release returns every slot in the set to the thread record's free pool.
func (gs *GuardSet[T]) Release() {
	for _, s := range gs.slots {
		gs.rec.freeSlot(s)
	}
	gs.slots = nil
}
