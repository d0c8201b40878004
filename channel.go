// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concq

// Producer is the enqueue half of the channel contract.
//
// Enqueue blocks while the channel is open and backpressured (bounded-full
// or mutex-contended); it returns ErrClosed if the channel was closed
// before the value could be committed. TryEnqueue never waits: it returns
// ErrWouldBlock instead of blocking.
//
// EnqueueWith/TryEnqueueWith construct the value in place via fn, avoiding
// a move of a large T on the hot path.
type Producer[T any] interface {
	// Enqueue adds v to the channel, waiting out backpressure.
	// Returns nil on success, ErrClosed if the channel is closed.
	Enqueue(v T) error

	// TryEnqueue adds v without waiting.
	// Returns nil, ErrWouldBlock, or ErrClosed.
	TryEnqueue(v T) error

	// EnqueueWith constructs the enqueued value via fn(&slot), waiting out
	// backpressure. fn must not retain the pointer past the call.
	EnqueueWith(fn func(*T)) error

	// TryEnqueueWith is the non-blocking counterpart of EnqueueWith.
	TryEnqueueWith(fn func(*T)) error
}

// Consumer is the dequeue half of the channel contract.
//
// Dequeue blocks until a value is available or the channel is closed and
// drained, returning ok=false only in the latter case, the same shape as
// a channel receive (v, ok := <-ch). TryDequeue never waits.
type Consumer[T any] interface {
	// Dequeue removes and returns a value, waiting while the channel is
	// open and empty. ok is false only once the channel is closed and
	// empty.
	Dequeue() (T, bool)

	// DequeueInto is the out-parameter form of Dequeue, avoiding a second
	// copy of a large T.
	DequeueInto(out *T) bool

	// TryDequeue removes and returns a value without waiting.
	// Returns ErrWouldBlock if the channel is empty (closed or not).
	TryDequeue() (T, error)

	// TryDequeueWith hands the head slot to fn without waiting, then pops
	// it. Returns ErrWouldBlock if empty.
	TryDequeueWith(fn func(*T)) error
}

// Channel is the combined producer/consumer contract satisfied by every
// queue in this package (§4.0): no lost updates, no spurious items,
// per-producer FIFO, liveness under Close, and destruction safety (the
// owner must Close and drain before discarding the channel).
type Channel[T any] interface {
	Producer[T]
	Consumer[T]

	// Close transitions the channel from open to closed. Idempotent,
	// irreversible, wakes every blocked Enqueue/Dequeue.
	Close()

	// IsClosed reports whether Close has been called.
	IsClosed() bool

	// Empty reports whether the channel currently holds no values.
	// The result is a snapshot; it may be stale the instant it's read.
	Empty() bool

	// Size reports the current number of enqueued values. For
	// BoundedLockFree this is a pair of atomic loads; UnboundedLockFree
	// walks its linked list. Either way the result is only a snapshot.
	Size() int
}

// BoundedChannel is a Channel with a fixed capacity.
type BoundedChannel[T any] interface {
	Channel[T]

	// Capacity returns the channel's fixed capacity.
	Capacity() int

	// IsFull reports whether the channel is currently at capacity.
	IsFull() bool
}
