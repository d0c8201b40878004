// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package workerpool runs a fixed-size pool of goroutines against a shared
// task queue, grounded on original_source/src/thread_pool.{h,cpp}.
//
// Submit hands one value to whichever worker goroutine dequeues it next and
// returns a channel the caller receives the result from, the same shape as
// the original's std::future<Data>, minus the exception-propagation
// machinery a future also carries (Go's callback runs in the worker
// goroutine and has no panic-to-caller path here; a panicking callback
// takes down the pool like any other unrecovered goroutine panic).
package workerpool

import (
	"sync"

	"github.com/flowlane/concq"
)

// DefaultWorkers and MaxWorkers mirror THREAD_NUM_DEFAULT/THREAD_NUM_MAX.
const (
	DefaultWorkers = 4
	MaxWorkers     = 10
)

type task[T, R any] struct {
	in  T
	out chan R
}

// Pool runs callback against every submitted value on one of workers
// goroutines, backed by an UnboundedLock queue so Submit never blocks on
// capacity the way a bounded channel would.
type Pool[T, R any] struct {
	callback func(T) R
	queue    *concq.UnboundedLock[task[T, R]]
	wg       sync.WaitGroup
}

// New starts a pool of workers goroutines, clamped to [1, MaxWorkers]
// (0 or negative falls back to DefaultWorkers, matching the original's
// "callback == nullptr disables the pool" behavior collapsing instead to
// "workers <= 0 picks the default").
func New[T, R any](workers int, callback func(T) R) *Pool[T, R] {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	p := &Pool[T, R]{
		callback: callback,
		queue:    concq.NewUnboundedLock[task[T, R]](),
	}
	for range workers {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool[T, R]) worker() {
	defer p.wg.Done()
	for {
		t, ok := p.queue.Dequeue()
		if !ok {
			return
		}
		t.out <- p.callback(t.in)
		close(t.out)
	}
}

// Submit enqueues v and returns a channel that receives callback(v)'s
// result exactly once. If the pool has already been closed, the returned
// channel is closed immediately without a value.
func (p *Pool[T, R]) Submit(v T) <-chan R {
	out := make(chan R, 1)
	if err := p.queue.Enqueue(task[T, R]{in: v, out: out}); err != nil {
		close(out)
	}
	return out
}

// Close stops accepting new work, lets every already-submitted task drain,
// and waits for all worker goroutines to exit.
func (p *Pool[T, R]) Close() {
	p.queue.Close()
	p.wg.Wait()
}
