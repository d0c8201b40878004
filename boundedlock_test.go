// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concq_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/flowlane/concq"
)

// =============================================================================
// BoundedLock - Basic Operations
// =============================================================================

func TestBoundedLockBasic(t *testing.T) {
	q := concq.NewBoundedLock[int](4)

	if q.Capacity() != 4 {
		t.Fatalf("Capacity: got %d, want 4", q.Capacity())
	}

	for i := range 4 {
		if err := q.Enqueue(i + 100); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}

	if !q.IsFull() {
		t.Fatalf("IsFull: got false, want true")
	}
	if err := q.TryEnqueue(999); !errors.Is(err, concq.ErrWouldBlock) {
		t.Fatalf("TryEnqueue on full: got %v, want ErrWouldBlock", err)
	}

	for i := range 4 {
		v, ok := q.Dequeue()
		if !ok {
			t.Fatalf("Dequeue(%d): ok=false", i)
		}
		if v != i+100 {
			t.Fatalf("Dequeue(%d): got %d, want %d", i, v, i+100)
		}
	}

	if !q.Empty() {
		t.Fatalf("Empty: got false, want true")
	}
	if _, err := q.TryDequeue(); !errors.Is(err, concq.ErrWouldBlock) {
		t.Fatalf("TryDequeue on empty: got %v, want ErrWouldBlock", err)
	}
}

func TestBoundedLockNewPanicsOnNonPositiveCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("NewBoundedLock(0) did not panic")
		}
	}()
	concq.NewBoundedLock[int](0)
}

func TestBoundedLockEnqueueBlocksUntilRoom(t *testing.T) {
	q := concq.NewBoundedLock[int](1)
	if err := q.Enqueue(1); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	done := make(chan struct{})
	go func() {
		if err := q.Enqueue(2); err != nil {
			t.Errorf("blocked Enqueue: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("Enqueue returned before the queue had room")
	case <-time.After(20 * time.Millisecond):
	}

	if _, ok := q.Dequeue(); !ok {
		t.Fatalf("Dequeue: ok=false")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("blocked Enqueue never woke after a slot freed")
	}
}

func TestBoundedLockCloseWakesBlockedDequeue(t *testing.T) {
	q := concq.NewBoundedLock[int](4)
	done := make(chan bool)
	go func() {
		_, ok := q.Dequeue()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		if ok {
			t.Fatalf("Dequeue on a closed empty queue returned ok=true")
		}
	case <-time.After(time.Second):
		t.Fatalf("Close did not wake a blocked Dequeue")
	}
}

func TestBoundedLockCloseWakesBlockedEnqueue(t *testing.T) {
	q := concq.NewBoundedLock[int](1)
	_ = q.Enqueue(1)

	errCh := make(chan error)
	go func() { errCh <- q.Enqueue(2) }()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, concq.ErrClosed) {
			t.Fatalf("blocked Enqueue after Close: got %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Close did not wake a blocked Enqueue")
	}
}

func TestBoundedLockCloseIsIdempotent(t *testing.T) {
	q := concq.NewBoundedLock[int](2)
	q.Close()
	q.Close()
	if !q.IsClosed() {
		t.Fatalf("IsClosed: got false after Close")
	}
	if err := q.Enqueue(1); !errors.Is(err, concq.ErrClosed) {
		t.Fatalf("Enqueue after Close: got %v, want ErrClosed", err)
	}
}

func TestBoundedLockMPMCNoLostOrDuplicatedValues(t *testing.T) {
	const producers, perProducer, consumers = 4, 1000, 4
	q := concq.NewBoundedLock[int](16)

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := range perProducer {
				_ = q.Enqueue(base*perProducer + i)
			}
		}(p)
	}

	results := make(chan int, producers*perProducer)
	var cwg sync.WaitGroup
	for range consumers {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				v, ok := q.Dequeue()
				if !ok {
					return
				}
				results <- v
			}
		}()
	}

	wg.Wait()
	q.Close()
	cwg.Wait()
	close(results)

	seen := make(map[int]bool, producers*perProducer)
	for v := range results {
		if seen[v] {
			t.Fatalf("value %d delivered more than once", v)
		}
		seen[v] = true
	}
	if len(seen) != producers*perProducer {
		t.Fatalf("delivered %d distinct values, want %d", len(seen), producers*perProducer)
	}
}

var _ concq.BoundedChannel[int] = (*concq.BoundedLock[int])(nil)
