// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concq

import "sync"

// UnboundedLock is a mutex+condvar multi-producer multi-consumer channel
// with no capacity limit, grounded on original_source/src/queue/lock_queue.h.
//
// Same shape as BoundedLock minus the capacity check and not-full
// condition: Enqueue never blocks on capacity, only on the mutex itself.
// Allocation growth of the backing slice is the only back-pressure.
type UnboundedLock[T any] struct {
	mu       sync.Mutex
	notEmpty sync.Cond
	buf      []T
	closed   bool
}

// NewUnboundedLock creates an empty, open channel.
func NewUnboundedLock[T any]() *UnboundedLock[T] {
	q := &UnboundedLock[T]{}
	q.notEmpty.L = &q.mu
	return q
}

// Enqueue adds v. Never blocks on capacity; returns ErrClosed if the
// channel is closed.
func (q *UnboundedLock[T]) Enqueue(v T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.buf = append(q.buf, v)
	q.mu.Unlock()
	q.notEmpty.Signal()
	return nil
}

// EnqueueWith constructs v in place via fn, then enqueues it.
func (q *UnboundedLock[T]) EnqueueWith(fn func(*T)) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	var v T
	fn(&v)
	q.buf = append(q.buf, v)
	q.mu.Unlock()
	q.notEmpty.Signal()
	return nil
}

// TryEnqueue is Enqueue's non-blocking name-alike: since Enqueue never
// waits on capacity here, the two are identical. Both return immediately,
// and both report a closed channel with ErrClosed.
func (q *UnboundedLock[T]) TryEnqueue(v T) error {
	return q.Enqueue(v)
}

// TryEnqueueWith mirrors TryEnqueue for the in-place constructor form.
func (q *UnboundedLock[T]) TryEnqueueWith(fn func(*T)) error {
	return q.EnqueueWith(fn)
}

// Dequeue removes and returns a value, blocking on the not-empty condition
// while the channel is open and empty. ok is false only once closed and
// drained.
func (q *UnboundedLock[T]) Dequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.buf) == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if len(q.buf) == 0 {
		var zero T
		return zero, false
	}
	return q.popLocked(), true
}

func (q *UnboundedLock[T]) popLocked() T {
	v := q.buf[0]
	q.advanceLocked()
	return v
}

// advanceLocked drops the front element (already consumed by the caller)
// and, once empty, releases the backing array so a long-idle channel
// doesn't pin memory proportional to its historical high-water mark.
func (q *UnboundedLock[T]) advanceLocked() {
	var zero T
	q.buf[0] = zero
	q.buf = q.buf[1:]
	if len(q.buf) == 0 {
		q.buf = nil
	}
}

// DequeueInto is the out-parameter form of Dequeue.
func (q *UnboundedLock[T]) DequeueInto(out *T) bool {
	v, ok := q.Dequeue()
	if ok {
		*out = v
	}
	return ok
}

// TryDequeue removes and returns a value without waiting.
func (q *UnboundedLock[T]) TryDequeue() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		var zero T
		return zero, ErrWouldBlock
	}
	return q.popLocked(), nil
}

// TryDequeueWith hands the head slot to fn without waiting, then pops it.
func (q *UnboundedLock[T]) TryDequeueWith(fn func(*T)) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		return ErrWouldBlock
	}
	fn(&q.buf[0])
	q.advanceLocked()
	return nil
}

// Close is idempotent and irreversible; it wakes every blocked Dequeue.
func (q *UnboundedLock[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	q.notEmpty.Broadcast()
}

// IsClosed reports whether Close has been called.
func (q *UnboundedLock[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Empty reports whether the channel currently holds no values.
func (q *UnboundedLock[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf) == 0
}

// Size reports the current occupancy.
func (q *UnboundedLock[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

var _ Channel[int] = (*UnboundedLock[int])(nil)
