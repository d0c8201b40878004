// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hp implements hazard-pointer safe memory reclamation, grounded on
// original_source/src/hp/{smr,guard,guard_array,retired,thread_data,
// thread_hp_storage,generic_hp}.h.
//
// A goroutine that walks a lock-free structure by following raw pointers
// (rather than a Go slice or a GC-visible field) publishes the pointer it is
// about to dereference into a Guard before following it, and releases the
// guard once done. A goroutine that unlinks a node calls Retire instead of
// freeing it outright; Retire only actually reclaims (calling the supplied
// deleter) once no live Guard anywhere in the Domain still protects it.
//
// Go's garbage collector already makes use-after-free memory-unsafe in the
// sense C++ means it: a retired node that's still reachable from some
// goroutine's local variable will never be collected out from under it.
// What GC does not give you for free is bounded, comparable-pointer-identity
// reclamation: a lock-free queue that never retires anything leaks every
// node it ever allocated, indefinitely, and never tells you so. hp exists to
// make that bound real, and to make a broken publish/protect discipline
// observable (the node gets reclaimed and its slot overwritten while a
// reader still holds a raw pointer to it) instead of silently masked by the
// collector.
package hp

import (
	"sync"
	"sync/atomic"
)

const (
	// DefaultHazardPtrCount is the number of hazard slots reserved per
	// attached thread record by Default.
	DefaultHazardPtrCount = 8
	// DefaultMaxThreads bounds the number of thread records Default will
	// attach before AttachThread panics.
	DefaultMaxThreads = 128
	// DefaultRetiredCapacity is the retired-list high-water mark at which
	// Retire triggers a Scan by default.
	DefaultRetiredCapacity = 100
)

// hazardSlot is one published-pointer slot. ptr is read by any goroutine
// running Scan and written only by the owning thread record, so it must be
// atomic; freeNext is touched only by the owner and needs no synchronization.
type hazardSlot[T any] struct {
	ptr      atomic.Pointer[T]
	freeNext *hazardSlot[T]
}

// ThreadRecord is a goroutine's (or, more precisely, a logical worker's)
// registration with a Domain: a fixed pool of hazard slots, a retired-node
// list, and a link into the domain's thread list so Scan can enumerate
// every published hazard across all threads.
//
// A ThreadRecord has no implicit goroutine affinity. Go has no portable
// thread-local storage and a goroutine is not pinned to an OS thread.
// Callers hold their own *ThreadRecord for as long as they do lock-free
// work, the same way they'd hold any other handle.
type ThreadRecord[T any] struct {
	domain       *Domain[T]
	slots        []hazardSlot[T]
	freeHead     *hazardSlot[T]
	retired      []retiredEntry[T]
	retiredCap   int
	active       atomic.Bool
	next         *ThreadRecord[T] // intrusive link in domain's thread list; set once, read-only after
	freeListNext *ThreadRecord[T] // intrusive link in domain's free list of detached records; recordMu-guarded
}

type retiredEntry[T any] struct {
	ptr     *T
	deleter func(*T)
}

// Domain is an independent hazard-pointer universe: its own thread list, its
// own help-scan backlog. Queues that never share nodes should use separate
// Domains so one's retire traffic can't stall the other's Scan.
type Domain[T any] struct {
	head            atomic.Pointer[ThreadRecord[T]]
	threadCount     atomic.Int64
	hazardPtrCount  int
	maxThreads      int
	retiredCapacity int

	pendingMu sync.Mutex
	pending   []retiredEntry[T]

	// recordMu guards recordFree, the free list of detached records
	// AttachThread reuses before it ever allocates (and counts against
	// maxThreads) a new one. Pushed to and popped from far less often than
	// hazard slots are protected/released, so a mutex-guarded singly-linked
	// list costs nothing worth avoiding with a lock-free stack.
	recordMu   sync.Mutex
	recordFree *ThreadRecord[T]
}
