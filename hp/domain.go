// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hp

import (
	"reflect"
	"sync"
)

// NewDomain creates an independent hazard-pointer domain. hazardPtrCount is
// the number of guard slots reserved per attached thread; maxThreads bounds
// the number of thread records AttachThread will hand out; retiredCapacity
// is the per-thread retired-list size that triggers an automatic Scan.
//
// Panics if any argument is <= 0.
func NewDomain[T any](hazardPtrCount, maxThreads, retiredCapacity int) *Domain[T] {
	if hazardPtrCount <= 0 || maxThreads <= 0 || retiredCapacity <= 0 {
		panic("hp: hazardPtrCount, maxThreads and retiredCapacity must all be > 0")
	}
	return &Domain[T]{
		hazardPtrCount:  hazardPtrCount,
		maxThreads:      maxThreads,
		retiredCapacity: retiredCapacity,
	}
}

var (
	defaultMu      sync.Mutex
	defaultDomains = map[reflect.Type]any{}
)

// Default returns a process-wide Domain[T], one per distinct T, created on
// first use with DefaultHazardPtrCount/DefaultMaxThreads/
// DefaultRetiredCapacity. Most callers should prefer constructing their own
// Domain with NewDomain so the scope of reclamation is explicit and
// tests can run against an isolated instance; Default exists for callers
// that genuinely want a single shared SMR universe per node type, matching
// the original's process-global singleton.
func Default[T any]() *Domain[T] {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	if d, ok := defaultDomains[t]; ok {
		return d.(*Domain[T])
	}
	d := NewDomain[T](DefaultHazardPtrCount, DefaultMaxThreads, DefaultRetiredCapacity)
	defaultDomains[t] = d
	return d
}

// AttachThread returns a thread record attached to the domain. It first
// tries to reuse a record some other caller has Detach'd; only when the
// free list is empty does it allocate a fresh record and count it against
// maxThreads. Callers that attach and Detach around each unit of work
// (rather than holding a record for the process lifetime) therefore keep
// threadCount bounded by the number of goroutines concurrently inside that
// work, not by how many times AttachThread has ever been called.
//
// Panics if maxThreads live records are attached at once with none free to
// reuse; size maxThreads for your worst-case concurrent goroutine count.
func (d *Domain[T]) AttachThread() *ThreadRecord[T] {
	if rec := d.popFreeRecord(); rec != nil {
		rec.reactivate()
		return rec
	}

	if d.threadCount.Add(1) > int64(d.maxThreads) {
		d.threadCount.Add(-1)
		panic("hp: max thread count exceeded")
	}
	rec := &ThreadRecord[T]{
		domain:     d,
		slots:      make([]hazardSlot[T], d.hazardPtrCount),
		retiredCap: d.retiredCapacity,
	}
	rec.rebuildFreeSlots()
	rec.active.Store(true)

	for {
		head := d.head.Load()
		rec.next = head
		if d.head.CompareAndSwap(head, rec) {
			return rec
		}
	}
}

// pushFreeRecord makes a Detach'd record available for AttachThread to
// reuse. r stays linked in the domain's thread list; only its free-list
// membership changes.
func (d *Domain[T]) pushFreeRecord(r *ThreadRecord[T]) {
	d.recordMu.Lock()
	r.freeListNext = d.recordFree
	d.recordFree = r
	d.recordMu.Unlock()
}

// popFreeRecord removes and returns the most recently Detach'd record, or
// nil if none is free.
func (d *Domain[T]) popFreeRecord() *ThreadRecord[T] {
	d.recordMu.Lock()
	r := d.recordFree
	if r != nil {
		d.recordFree = r.freeListNext
		r.freeListNext = nil
	}
	d.recordMu.Unlock()
	return r
}

// snapshotHazards returns the set of every pointer currently published by
// any active thread record in the domain. Scan diffs each retired entry
// against this set.
func (d *Domain[T]) snapshotHazards() map[*T]struct{} {
	set := make(map[*T]struct{})
	for r := d.head.Load(); r != nil; r = r.next {
		if !r.active.Load() {
			continue
		}
		for i := range r.slots {
			if p := r.slots[i].ptr.Load(); p != nil {
				set[p] = struct{}{}
			}
		}
	}
	return set
}

// drainPending reclaims whatever entries in the domain-wide help-scan
// backlog are no longer hazarded by hazards. Any thread's Scan call helps
// drain this backlog, so nodes orphaned by a Detach don't wait for that
// same thread to come back and scan again.
func (d *Domain[T]) drainPending(hazards map[*T]struct{}) {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	kept := d.pending[:0]
	for _, e := range d.pending {
		if _, ok := hazards[e.ptr]; ok {
			kept = append(kept, e)
		} else {
			e.deleter(e.ptr)
		}
	}
	d.pending = kept
}
