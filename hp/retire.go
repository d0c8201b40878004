// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hp

// Retire hands p to rec for eventual reclamation: once no Guard anywhere in
// rec's domain still protects p, deleter(p) runs. Retire appends p to rec's
// retired list; when that append brings the list to the domain's
// retiredCapacity, it runs Scan over the whole list, which calls deleter
// for every unprotected entry, p included.
func Retire[T any](rec *ThreadRecord[T], p *T, deleter func(*T)) {
	rec.retired = append(rec.retired, retiredEntry[T]{ptr: p, deleter: deleter})
	if len(rec.retired) >= rec.retiredCap {
		Scan(rec)
	}
}

// Scan reclaims every entry in rec's retired list that no active thread
// record in the domain currently protects, and helps drain the domain-wide
// backlog left by any detached thread. Safe to call even when the retired
// list is short; HelpScan runs only the backlog-draining step.
func Scan[T any](rec *ThreadRecord[T]) {
	hazards := rec.domain.snapshotHazards()

	kept := rec.retired[:0]
	for _, e := range rec.retired {
		if _, ok := hazards[e.ptr]; ok {
			kept = append(kept, e)
		} else {
			e.deleter(e.ptr)
		}
	}
	rec.retired = kept

	rec.domain.drainPending(hazards)
}

// HelpScan drains the domain-wide backlog of nodes orphaned by Detach,
// without touching rec's own retired list. Scan already does this as its
// last step; call HelpScan directly when a thread wants to help without
// also forcing a scan of its own (possibly short) retired list.
func HelpScan[T any](rec *ThreadRecord[T]) {
	rec.domain.drainPending(rec.domain.snapshotHazards())
}
