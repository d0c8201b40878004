// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package concq provides four FIFO channel implementations sharing one
// producer/consumer contract, plus the hazard-pointer memory reclamation
// subsystem that backs the unbounded lock-free variant.
//
// # Queue variants
//
//	BoundedLock[T]       - mutex + condvar, fixed capacity
//	UnboundedLock[T]     - mutex + condvar, growable
//	BoundedLockFree[T]   - CAS sequenced-cell ring, fixed capacity
//	UnboundedLockFree[T] - Michael-Scott linked list, hazard-pointer reclaimed
//
// All four implement [Channel]; BoundedLock and BoundedLockFree additionally
// implement [BoundedChannel].
//
//	q := concq.NewBoundedLockFree[Event](1024)
//
//	if err := q.Enqueue(ev); err != nil {
//	    // q was closed before the value could be committed
//	}
//
//	ev, ok := q.Dequeue()
//	if !ok {
//	    // q is closed and drained
//	}
//
// # Choosing a variant
//
// BoundedLock and UnboundedLock suspend the calling goroutine (via
// sync.Cond) when backpressured; they are the right default when producers
// and consumers are few and blocking is cheap.
//
// BoundedLockFree and UnboundedLockFree spin with adaptive back-off instead
// of descending into the scheduler, trading CPU for lower latency under
// contention. UnboundedLockFree additionally pays the cost of hazard-pointer
// bookkeeping (package hp, in the hp subdirectory) to reclaim linked-list
// nodes safely.
//
// # Capacity
//
// BoundedLockFree's capacity rounds up to the next power of two; minimum
// capacity is 2; it panics below that, same as a non-positive capacity
// argument to BoundedLock.
//
// # Close semantics
//
// Close is idempotent and irreversible. Once called: Enqueue/TryEnqueue
// return ErrClosed; queued values remain dequeueable; Dequeue returns
// ok=false only once the channel is both closed and empty. Any goroutine
// already blocked in Enqueue or Dequeue is woken within a bounded time.
//
// # Destruction
//
// A Channel has no destructor. The owner is responsible for calling Close
// and then draining (Dequeue until ok is false) before letting the value be
// collected. Concurrent use during this drain is the caller's
// responsibility: as with the C++ original this module was distilled from,
// destruction is not concurrent-safe.
//
// # Error handling
//
// Non-blocking operations return [ErrWouldBlock] when they cannot proceed
// (full or empty). This is a control-flow signal, not a failure; retry
// with backoff, or call the blocking variant. [IsWouldBlock] and [IsClosed]
// classify returned errors; [ErrWouldBlock] is sourced from
// [code.hybscloud.com/iox] for ecosystem consistency.
//
// # Memory ordering
//
// BoundedLockFree's cursors and cell sequences, and both lock-free
// variants' closed flags, use [code.hybscloud.com/atomix] typed atomics:
// acquire on loads of published sequences, release on stores that publish
// them, acq_rel on CAS that both observes and publishes, relaxed only for
// strictly local counters. UnboundedLockFree's head, tail and next links
// are sync/atomic.Pointer values, which are sequentially consistent.
// Contention loops back off with [code.hybscloud.com/spin.Wait].
//
// # Race detection
//
// Go's race detector tracks explicit synchronization (mutex, channel,
// WaitGroup), not the acquire/release orderings the lock-free variants rely
// on across independent atomic variables. Concurrent tests for
// BoundedLockFree/UnboundedLockFree are excluded under -race via the
// RaceEnabled build-tag pair; use stress testing without the race detector,
// or a memory-model checker, to validate those algorithms.
package concq
