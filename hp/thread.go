// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hp

// Detach marks the record inactive, hands its still-retired nodes to the
// domain's help-scan backlog, where any thread's Scan or HelpScan reclaims
// them, and returns the record to the domain's free list for a future
// AttachThread to reuse. Once the backlog holds at least retiredCapacity
// entries, Detach drains it itself with HelpScan, so callers that attach
// and detach around every operation still get their nodes reclaimed.
// The record itself stays linked into the domain's thread list forever
// (no safe way to unlink it without its own hazard-pointer protocol) but
// Scan skips inactive records when computing the hazard set, so it costs a
// list traversal, not a leak of reclaimable nodes.
func (r *ThreadRecord[T]) Detach() {
	r.active.Store(false)
	if len(r.retired) != 0 {
		r.domain.pendingMu.Lock()
		r.domain.pending = append(r.domain.pending, r.retired...)
		backlog := len(r.domain.pending)
		r.domain.pendingMu.Unlock()
		r.retired = nil
		if backlog >= r.retiredCap {
			HelpScan(r)
		}
	}
	r.domain.pushFreeRecord(r)
}

// reactivate restores a record popped from the domain's free list to a
// clean attached state. Detach already flushed anything it had retired, so
// only the hazard slots need resetting.
func (r *ThreadRecord[T]) reactivate() {
	r.rebuildFreeSlots()
	r.active.Store(true)
}

// rebuildFreeSlots clears every hazard slot and re-chains them into the
// record's free list, the same layout AttachThread gives a brand new
// record.
func (r *ThreadRecord[T]) rebuildFreeSlots() {
	for i := range r.slots {
		r.slots[i].ptr.Store(nil)
		if i+1 < len(r.slots) {
			r.slots[i].freeNext = &r.slots[i+1]
		} else {
			r.slots[i].freeNext = nil
		}
	}
	r.freeHead = &r.slots[0]
}

func (r *ThreadRecord[T]) allocSlot() *hazardSlot[T] {
	if r.freeHead == nil {
		panic("hp: thread record has no free hazard slots left")
	}
	s := r.freeHead
	r.freeHead = s.freeNext
	s.freeNext = nil
	return s
}

func (r *ThreadRecord[T]) freeSlot(s *hazardSlot[T]) {
	s.ptr.Store(nil)
	s.freeNext = r.freeHead
	r.freeHead = s
}
