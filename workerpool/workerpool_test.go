// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package workerpool_test

import (
	"testing"
	"time"

	"github.com/flowlane/concq/workerpool"
)

func TestPoolSubmitRunsCallback(t *testing.T) {
	p := workerpool.New(4, func(n int) int { return n * 2 })
	defer p.Close()

	results := make([]<-chan int, 0, 100)
	for i := range 100 {
		results = append(results, p.Submit(i))
	}
	for i, ch := range results {
		select {
		case v := <-ch:
			if v != i*2 {
				t.Fatalf("Submit(%d): got %d, want %d", i, v, i*2)
			}
		case <-time.After(time.Second):
			t.Fatalf("Submit(%d): result never arrived", i)
		}
	}
}

func TestPoolWorkersClampedToRange(t *testing.T) {
	p := workerpool.New(0, func(n int) int { return n })
	defer p.Close()
	// 0 falls back to DefaultWorkers; just verify the pool is still usable.
	if v := <-p.Submit(7); v != 7 {
		t.Fatalf("Submit(7): got %d, want 7", v)
	}

	p2 := workerpool.New(1000, func(n int) int { return n })
	defer p2.Close()
	if v := <-p2.Submit(9); v != 9 {
		t.Fatalf("Submit(9): got %d, want 9", v)
	}
}

func TestPoolCloseDrainsSubmittedWork(t *testing.T) {
	p := workerpool.New(2, func(n int) int { return n + 1 })
	chans := make([]<-chan int, 20)
	for i := range 20 {
		chans[i] = p.Submit(i)
	}
	p.Close()

	for i, ch := range chans {
		select {
		case v := <-ch:
			if v != i+1 {
				t.Fatalf("result %d: got %d, want %d", i, v, i+1)
			}
		default:
			t.Fatalf("result %d: Close returned before the task drained", i)
		}
	}
}

func TestPoolSubmitAfterCloseReturnsClosedChannel(t *testing.T) {
	p := workerpool.New(2, func(n int) int { return n })
	p.Close()

	ch := p.Submit(1)
	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf("Submit after Close delivered a value: %d", v)
		}
	case <-time.After(time.Second):
		t.Fatalf("Submit after Close never closed its result channel")
	}
}
