// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"github.com/flowlane/concq/internal/ring"
)

// BoundedLockFree is a CAS-based multi-producer multi-consumer bounded
// channel, backed by a sequenced-cell ring (Vyukov-style MPMC).
//
// Enqueue/Dequeue never descend into the scheduler except via spin.Wait's
// saturated-yield fallback; TryEnqueue/TryDequeue never wait at all. Unlike
// BoundedLock, backpressure is resolved by spinning, not by sleeping on a
// condition variable; pick this variant when contention windows are short
// and goroutines can afford to burn CPU rather than be rescheduled.
type BoundedLockFree[T any] struct {
	_          pad
	posEnqueue atomix.Uint64
	_          pad
	posDequeue atomix.Uint64
	_          pad
	closed     atomix.Bool
	_          pad
	ring       *ring.Ring[T]
	capacity   uint64
}

// NewBoundedLockFree creates a channel with capacity rounded up to the next
// power of two. Panics if capacity < 2.
func NewBoundedLockFree[T any](capacity int) *BoundedLockFree[T] {
	r := ring.New[T](capacity)
	return &BoundedLockFree[T]{
		ring:     r,
		capacity: uint64(r.Cap()),
	}
}

// claimEnqueue runs the producer side of the sequenced-cell protocol
// (§4.6): spin while this producer is behind a slot another producer just
// claimed, fail fast once the ring is observed full, CAS to claim a slot
// once its sequence matches this position.
func (q *BoundedLockFree[T]) claimEnqueue() (*ring.Cell[T], uint64, error) {
	if q.closed.LoadAcquire() {
		return nil, 0, ErrClosed
	}
	sw := spin.Wait{}
	for {
		pos := q.posEnqueue.LoadAcquire()
		cell := q.ring.At(pos)
		seq := cell.Seq.LoadAcquire()
		diff := int64(seq) - int64(pos)

		if diff == 0 {
			if q.posEnqueue.CompareAndSwapAcqRel(pos, pos+1) {
				return cell, pos, nil
			}
		} else if diff < 0 {
			return nil, 0, ErrWouldBlock
		}
		sw.Once()
	}
}

func (q *BoundedLockFree[T]) claimDequeue() (*ring.Cell[T], uint64, error) {
	sw := spin.Wait{}
	for {
		pos := q.posDequeue.LoadAcquire()
		cell := q.ring.At(pos)
		seq := cell.Seq.LoadAcquire()
		diff := int64(seq) - int64(pos+1)

		if diff == 0 {
			if q.posDequeue.CompareAndSwapAcqRel(pos, pos+1) {
				return cell, pos, nil
			}
		} else if diff < 0 {
			return nil, 0, ErrWouldBlock
		}
		sw.Once()
	}
}

// TryEnqueue adds v without waiting. Returns ErrWouldBlock if full,
// ErrClosed if closed.
func (q *BoundedLockFree[T]) TryEnqueue(v T) error {
	cell, pos, err := q.claimEnqueue()
	if err != nil {
		return err
	}
	cell.Data = v
	cell.Seq.StoreRelease(pos + 1)
	return nil
}

// TryEnqueueWith constructs the enqueued value via fn without waiting.
func (q *BoundedLockFree[T]) TryEnqueueWith(fn func(*T)) error {
	cell, pos, err := q.claimEnqueue()
	if err != nil {
		return err
	}
	fn(&cell.Data)
	cell.Seq.StoreRelease(pos + 1)
	return nil
}

// Enqueue adds v, spinning out backpressure until a slot frees up or the
// channel is closed.
func (q *BoundedLockFree[T]) Enqueue(v T) error {
	sw := spin.Wait{}
	for {
		err := q.TryEnqueue(v)
		switch err {
		case nil:
			return nil
		case ErrClosed:
			return err
		}
		sw.Once()
	}
}

// EnqueueWith is the blocking counterpart of TryEnqueueWith.
func (q *BoundedLockFree[T]) EnqueueWith(fn func(*T)) error {
	sw := spin.Wait{}
	for {
		err := q.TryEnqueueWith(fn)
		switch err {
		case nil:
			return nil
		case ErrClosed:
			return err
		}
		sw.Once()
	}
}

// TryDequeue removes and returns a value without waiting.
func (q *BoundedLockFree[T]) TryDequeue() (T, error) {
	cell, pos, err := q.claimDequeue()
	if err != nil {
		var zero T
		return zero, err
	}
	v := cell.Data
	var zero T
	cell.Data = zero
	cell.Seq.StoreRelease(pos + q.capacity)
	return v, nil
}

// TryDequeueWith hands the head slot to fn without waiting, then clears it.
func (q *BoundedLockFree[T]) TryDequeueWith(fn func(*T)) error {
	cell, pos, err := q.claimDequeue()
	if err != nil {
		return err
	}
	fn(&cell.Data)
	var zero T
	cell.Data = zero
	cell.Seq.StoreRelease(pos + q.capacity)
	return nil
}

// Dequeue removes and returns a value, spinning while the channel is open
// and empty. ok is false only once the channel is closed and drained.
func (q *BoundedLockFree[T]) Dequeue() (T, bool) {
	var out T
	ok := q.DequeueInto(&out)
	return out, ok
}

// DequeueInto is the out-parameter form of Dequeue.
func (q *BoundedLockFree[T]) DequeueInto(out *T) bool {
	sw := spin.Wait{}
	for {
		cell, pos, err := q.claimDequeue()
		if err == nil {
			*out = cell.Data
			var zero T
			cell.Data = zero
			cell.Seq.StoreRelease(pos + q.capacity)
			return true
		}
		// err is ErrWouldBlock: the ring looked empty. Closed-and-empty
		// is the only condition that converts "wait" into "give up",
		// re-checked each iteration since a concurrent producer may
		// still land a value before Close takes effect.
		if q.closed.LoadAcquire() && q.Empty() {
			return false
		}
		sw.Once()
	}
}

// Close is idempotent and irreversible; blocked Enqueue/Dequeue calls
// observe it within one spin.Wait iteration.
func (q *BoundedLockFree[T]) Close() {
	q.closed.StoreRelease(true)
}

// IsClosed reports whether Close has been called.
func (q *BoundedLockFree[T]) IsClosed() bool {
	return q.closed.LoadAcquire()
}

// Size reports the current occupancy. Always in [0, Capacity()] per the
// ring's pos_enqueue-pos_dequeue invariant.
func (q *BoundedLockFree[T]) Size() int {
	// Load the dequeue cursor first: the enqueue cursor never falls behind
	// it, so the difference cannot go negative.
	deq := q.posDequeue.LoadAcquire()
	enq := q.posEnqueue.LoadAcquire()
	if n := enq - deq; n < q.capacity {
		return int(n)
	}
	return int(q.capacity)
}

// Empty reports whether the channel currently holds no values.
func (q *BoundedLockFree[T]) Empty() bool {
	return q.Size() == 0
}

// IsFull reports whether the channel is at capacity.
func (q *BoundedLockFree[T]) IsFull() bool {
	return q.Size() >= int(q.capacity)
}

// Capacity returns the channel's fixed, power-of-two capacity.
func (q *BoundedLockFree[T]) Capacity() int {
	return int(q.capacity)
}

var (
	_ BoundedChannel[int] = (*BoundedLockFree[int])(nil)
)
