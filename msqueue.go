// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concq

import (
	"sync"
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"github.com/flowlane/concq/hp"
)

// msNode is one link of the Michael-Scott queue. next is read and CASed by
// any goroutine walking the list, so it needs Go's generic atomic.Pointer,
// since hp's Guard.Protect is written against that type, not atomix's
// fixed-width atomics, to work for any pointee type, not just integers.
type msNode[T any] struct {
	data T
	next atomic.Pointer[msNode[T]]
}

// UnboundedLockFree is a lock-free multi-producer multi-consumer channel
// with no capacity limit, grounded on
// original_source/src/queue/ms_queue.h: a Michael-Scott linked queue with a
// permanent dummy head node, protected by hazard pointers from the hp
// package instead of the original's own SMR.
//
// Unlike BoundedLockFree's array-backed ring, every enqueue allocates a
// node and every dequeue retires one; node reuse happens through an
// internal pool fed by hp's reclamation once no guard anywhere still
// protects the retired node.
type UnboundedLockFree[T any] struct {
	_      pad
	head   atomic.Pointer[msNode[T]]
	_      pad
	tail   atomic.Pointer[msNode[T]]
	_      pad
	closed atomix.Bool
	_      pad

	domain   *hp.Domain[msNode[T]]
	nodePool sync.Pool
}

// NewUnboundedLockFree creates an empty, open channel with its own
// hazard-pointer domain, isolated from any other UnboundedLockFree so one
// queue's retire traffic never delays another's reclamation.
func NewUnboundedLockFree[T any]() *UnboundedLockFree[T] {
	domain := hp.NewDomain[msNode[T]](2, maxConcurrentGoroutinesHint, 64)
	dummy := &msNode[T]{}

	q := &UnboundedLockFree[T]{domain: domain}
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

// maxConcurrentGoroutinesHint bounds the number of hazard-pointer thread
// records a single UnboundedLockFree will ever attach at once. Every
// borrowRecord/returnRecord pair attaches and detaches the domain's own
// record, which reuses a detached record from the domain's free list
// before ever allocating a fresh one, so this is sized for the largest
// number of goroutines ever concurrently inside this queue's methods, not
// the lifetime total number of calls.
const maxConcurrentGoroutinesHint = 4096

func (q *UnboundedLockFree[T]) borrowRecord() *hp.ThreadRecord[msNode[T]] {
	return q.domain.AttachThread()
}

func (q *UnboundedLockFree[T]) returnRecord(rec *hp.ThreadRecord[msNode[T]]) {
	rec.Detach()
}

func (q *UnboundedLockFree[T]) allocNode() *msNode[T] {
	if v := q.nodePool.Get(); v != nil {
		n := v.(*msNode[T])
		n.next.Store(nil)
		var zero T
		n.data = zero
		return n
	}
	return &msNode[T]{}
}

func (q *UnboundedLockFree[T]) freeNode(n *msNode[T]) {
	q.nodePool.Put(n)
}

// enqueueNode runs the producer side of the Michael-Scott protocol: publish
// a hazard pointer on tail, help advance a lagging tail, then CAS the new
// node onto whichever node's next pointer is actually nil.
func (q *UnboundedLockFree[T]) enqueueNode(n *msNode[T]) {
	rec := q.borrowRecord()
	defer q.returnRecord(rec)
	g := hp.NewGuard(rec)
	defer g.Release()

	sw := spin.Wait{}
	var t *msNode[T]
	for {
		t = g.Protect(&q.tail)
		next := t.next.Load()
		if q.tail.Load() != t {
			sw.Once()
			continue
		}
		if next != nil {
			q.tail.CompareAndSwap(t, next)
			sw.Once()
			continue
		}
		if t.next.CompareAndSwap(nil, n) {
			break
		}
		sw.Once()
	}
	q.tail.CompareAndSwap(t, n)
}

// Enqueue adds v. Never blocks on capacity; returns ErrClosed if the
// channel is closed.
func (q *UnboundedLockFree[T]) Enqueue(v T) error {
	if q.closed.LoadAcquire() {
		return ErrClosed
	}
	n := q.allocNode()
	n.data = v
	q.enqueueNode(n)
	return nil
}

// EnqueueWith constructs v in place via fn, then enqueues it.
func (q *UnboundedLockFree[T]) EnqueueWith(fn func(*T)) error {
	if q.closed.LoadAcquire() {
		return ErrClosed
	}
	n := q.allocNode()
	fn(&n.data)
	q.enqueueNode(n)
	return nil
}

// TryEnqueue is Enqueue's non-blocking name-alike: Enqueue never waits on
// capacity here, so the two are identical.
func (q *UnboundedLockFree[T]) TryEnqueue(v T) error {
	return q.Enqueue(v)
}

// TryEnqueueWith mirrors TryEnqueue for the in-place constructor form.
func (q *UnboundedLockFree[T]) TryEnqueueWith(fn func(*T)) error {
	return q.EnqueueWith(fn)
}

// dequeueAttempt is a single guarded read-and-CAS try at popping the front
// node, running fn against the popped value on success.
//
// It guards both head and head.next before touching either, unlike the
// original's try_dequeue_with, which only guards head. In C++ that gap is
// papered over by the fact that nothing frees a node out from under a
// reader that hasn't retired it; in Go the risk isn't use-after-free (the
// GC keeps next alive for as long as this goroutine's local variable does)
// but a data race against node reuse: once a retired node is handed back to
// nodePool and reallocated, a concurrent dequeuer reading its old data
// through an unguarded pointer would race the new allocation's writes.
// Guarding next closes that window the same way guarding head already does.
func (q *UnboundedLockFree[T]) dequeueAttempt(rec *hp.ThreadRecord[msNode[T]], fn func(*T)) error {
	gs := hp.NewGuardSet[msNode[T]](rec, 2)
	defer gs.Release()

	h := gs.Protect(0, &q.head)
	next := gs.Protect(1, &h.next)
	if q.head.Load() != h {
		return ErrWouldBlock
	}

	if next == nil {
		if q.closed.LoadAcquire() {
			return ErrClosed
		}
		return ErrWouldBlock
	}

	if t := q.tail.Load(); h == t {
		q.tail.CompareAndSwap(t, next)
		return ErrWouldBlock
	}

	if !q.head.CompareAndSwap(h, next) {
		return ErrWouldBlock
	}

	fn(&next.data)
	hp.Retire(rec, h, q.freeNode)
	return nil
}

// TryDequeue removes and returns a value without waiting.
func (q *UnboundedLockFree[T]) TryDequeue() (T, error) {
	var out T
	err := q.TryDequeueWith(func(p *T) { out = *p })
	return out, err
}

// TryDequeueWith hands the popped value to fn without waiting. A single
// failed attempt, whether from contention or from a momentarily empty
// queue, reports ErrWouldBlock, since Try never retries on its own.
func (q *UnboundedLockFree[T]) TryDequeueWith(fn func(*T)) error {
	rec := q.borrowRecord()
	defer q.returnRecord(rec)
	err := q.dequeueAttempt(rec, fn)
	if err == ErrClosed {
		return ErrWouldBlock
	}
	return err
}

// Dequeue removes and returns a value, spinning while the channel is open
// and empty. ok is false only once the channel is closed and drained.
func (q *UnboundedLockFree[T]) Dequeue() (T, bool) {
	var out T
	ok := q.DequeueInto(&out)
	return out, ok
}

// DequeueInto is the out-parameter form of Dequeue.
func (q *UnboundedLockFree[T]) DequeueInto(out *T) bool {
	rec := q.borrowRecord()
	defer q.returnRecord(rec)

	sw := spin.Wait{}
	for {
		err := q.dequeueAttempt(rec, func(p *T) { *out = *p })
		switch err {
		case nil:
			return true
		case ErrClosed:
			return false
		}
		sw.Once()
	}
}

// Close is idempotent and irreversible; blocked Enqueue/Dequeue calls
// observe it within one spin.Wait iteration.
func (q *UnboundedLockFree[T]) Close() {
	q.closed.StoreRelease(true)
}

// IsClosed reports whether Close has been called.
func (q *UnboundedLockFree[T]) IsClosed() bool {
	return q.closed.LoadAcquire()
}

// Empty reports whether the channel currently holds no values. Takes a
// hazard guard the same way Dequeue does, since head.next is only safe to
// read while protected.
func (q *UnboundedLockFree[T]) Empty() bool {
	rec := q.borrowRecord()
	defer q.returnRecord(rec)
	g := hp.NewGuard(rec)
	defer g.Release()
	h := g.Protect(&q.head)
	return h.next.Load() == nil
}

// Size reports the current occupancy by walking from head to tail. O(n) and
// only a snapshot: two concurrent mutations can make it over- or
// under-count a node that's mid-transition.
func (q *UnboundedLockFree[T]) Size() int {
	rec := q.borrowRecord()
	defer q.returnRecord(rec)
	g := hp.NewGuard(rec)
	defer g.Release()

	head := g.Protect(&q.head)
	tail := q.tail.Load()
	count := 0
	curr := head.next.Load()
	for curr != nil && head != tail {
		count++
		if curr == tail {
			break
		}
		curr = curr.next.Load()
	}
	return count
}

var _ Channel[int] = (*UnboundedLockFree[int])(nil)
