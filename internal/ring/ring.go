// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ring provides the power-of-two-sized, sequence-tagged cell
// storage shared by the lock-free bounded channel.
//
// Unlike the allocate-without-construct buffer this is grounded on
// (original_source/src/opt/buffer.h), Go has no way to allocate a slice
// without running its elements' zero-value initialization, and a zero
// value is always safe to hold transiently, so Ring skips straight to a
// plain slice of cells. What the original buffer bought in C++ (avoiding a
// default-constructor call per slot) isn't a cost in Go; the masked
// power-of-two indexing is the part worth keeping.
package ring

import "code.hybscloud.com/atomix"

// Cell is one slot of a Ring. Seq encodes which pass (producer or
// consumer) may claim the slot next, following the Vyukov sequenced-cell
// protocol: Seq == pos means a producer may claim it, Seq == pos+1 means a
// consumer may.
type Cell[T any] struct {
	Seq  atomix.Uint64
	Data T
}

// Ring is masked, power-of-two-sized storage for N cells.
type Ring[T any] struct {
	cells []Cell[T]
	mask  uint64
}

// New allocates a Ring of capacity n, rounded up to the next power of two.
// Cell i is initialized with Seq == i, per the sequenced-cell invariant.
// Panics if n < 2.
func New[T any](n int) *Ring[T] {
	size := roundToPow2(n)
	r := &Ring[T]{
		cells: make([]Cell[T], size),
		mask:  uint64(size) - 1,
	}
	for i := range r.cells {
		r.cells[i].Seq.StoreRelaxed(uint64(i))
	}
	return r
}

// At returns the cell at logical position pos, masked into range.
func (r *Ring[T]) At(pos uint64) *Cell[T] {
	return &r.cells[pos&r.mask]
}

// Cap returns the ring's physical capacity (a power of two).
func (r *Ring[T]) Cap() int {
	return len(r.cells)
}

func roundToPow2(n int) int {
	if n < 2 {
		panic("ring: capacity must be >= 2")
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
