// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hp_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/flowlane/concq/hp"
)

// =============================================================================
// Guard / Protect / Release
// =============================================================================

func TestGuardProtectsAgainstReclaim(t *testing.T) {
	dom := hp.NewDomain[int](2, 4, 1)
	rec := dom.AttachThread()
	defer rec.Detach()

	var slot atomic.Pointer[int]
	v := 42
	slot.Store(&v)

	g := hp.NewGuard(rec)
	defer g.Release()

	p := g.Protect(&slot)
	if p != &v || *p != 42 {
		t.Fatalf("Protect: got %v, want pointer to 42", p)
	}

	reclaimed := false
	hp.Retire(rec, &v, func(*int) { reclaimed = true })
	hp.Scan(rec)

	if reclaimed {
		t.Fatalf("Scan reclaimed a node still protected by a live guard")
	}

	g.Release()
	hp.Scan(rec)
	if !reclaimed {
		t.Fatalf("Scan did not reclaim a node after its guard was released")
	}
}

func TestGuardSetHoldsMultipleSlots(t *testing.T) {
	dom := hp.NewDomain[int](4, 4, 8)
	rec := dom.AttachThread()
	defer rec.Detach()

	var a, b atomic.Pointer[int]
	va, vb := 1, 2
	a.Store(&va)
	b.Store(&vb)

	gs := hp.NewGuardSet[int](rec, 2)
	defer gs.Release()

	if p := gs.Protect(0, &a); p != &va {
		t.Fatalf("Protect(0): got %v, want %v", p, &va)
	}
	if p := gs.Protect(1, &b); p != &vb {
		t.Fatalf("Protect(1): got %v, want %v", p, &vb)
	}

	var aReclaimed, bReclaimed bool
	hp.Retire(rec, &va, func(*int) { aReclaimed = true })
	hp.Retire(rec, &vb, func(*int) { bReclaimed = true })
	hp.Scan(rec)

	if aReclaimed || bReclaimed {
		t.Fatalf("Scan reclaimed nodes still protected by a GuardSet")
	}
}

// =============================================================================
// Retire / Scan
// =============================================================================

func TestScanReclaimsUnprotectedRetiredNodes(t *testing.T) {
	dom := hp.NewDomain[int](1, 4, 100)
	rec := dom.AttachThread()
	defer rec.Detach()

	var reclaimedCount int
	for i := range 10 {
		v := i
		hp.Retire(rec, &v, func(*int) { reclaimedCount++ })
	}
	hp.Scan(rec)

	if reclaimedCount != 10 {
		t.Fatalf("reclaimedCount: got %d, want 10", reclaimedCount)
	}
}

func TestRetireTriggersAutoScanAtCapacity(t *testing.T) {
	dom := hp.NewDomain[int](1, 4, 4)
	rec := dom.AttachThread()
	defer rec.Detach()

	var reclaimedCount int
	for i := range 4 {
		v := i
		hp.Retire(rec, &v, func(*int) { reclaimedCount++ })
	}

	if reclaimedCount != 4 {
		t.Fatalf("auto-scan at retiredCapacity: got %d reclaimed, want 4", reclaimedCount)
	}
}

// =============================================================================
// Detach / help-scan
// =============================================================================

func TestDetachDefersToHelpScan(t *testing.T) {
	dom := hp.NewDomain[int](1, 4, 100)
	recA := dom.AttachThread()
	recB := dom.AttachThread()
	defer recB.Detach()

	var reclaimed bool
	v := 7
	hp.Retire(recA, &v, func(*int) { reclaimed = true })
	recA.Detach()

	if reclaimed {
		t.Fatalf("node reclaimed before any help-scan ran")
	}

	hp.HelpScan(recB)
	if !reclaimed {
		t.Fatalf("HelpScan on another thread did not drain the detached thread's backlog")
	}
}

func TestDetachedRecordIsExcludedFromHazardSet(t *testing.T) {
	dom := hp.NewDomain[int](1, 4, 100)
	recA := dom.AttachThread()
	recB := dom.AttachThread()
	defer recB.Detach()

	var slot atomic.Pointer[int]
	v := 99
	slot.Store(&v)

	g := hp.NewGuard(recA)
	g.Protect(&slot)
	recA.Detach() // leaves the guard's slot populated but the record inactive

	var reclaimed bool
	hp.Retire(recB, &v, func(*int) { reclaimed = true })
	hp.Scan(recB)

	if !reclaimed {
		t.Fatalf("Scan treated an inactive thread record's stale hazard slot as live")
	}
}

// =============================================================================
// Default singleton
// =============================================================================

func TestDefaultIsSharedPerType(t *testing.T) {
	a := hp.Default[string]()
	b := hp.Default[string]()
	if a != b {
		t.Fatalf("Default[string]() returned two different domains")
	}

	c := hp.Default[int]()
	var ai any = a
	if ai == any(c) {
		t.Fatalf("Default[string]() and Default[int]() aliased the same domain")
	}
}

// =============================================================================
// Concurrency smoke test
// =============================================================================

func TestConcurrentRetireAndScanDoNotRace(t *testing.T) {
	dom := hp.NewDomain[int](2, 16, 32)

	var wg sync.WaitGroup
	var totalReclaimed atomic.Int64
	for w := range 8 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			rec := dom.AttachThread()
			defer rec.Detach()

			var slot atomic.Pointer[int]
			for i := range 200 {
				v := id*1000 + i
				slot.Store(&v)

				g := hp.NewGuard(rec)
				g.Protect(&slot)
				g.Release()

				hp.Retire(rec, &v, func(*int) { totalReclaimed.Add(1) })
			}
			hp.Scan(rec)
		}(w)
	}
	wg.Wait()

	if totalReclaimed.Load() != 8*200 {
		t.Fatalf("totalReclaimed: got %d, want %d", totalReclaimed.Load(), 8*200)
	}
}
