// SPDX-License-Identifier: Apache-2.0

package bench

import "sync/atomic"

// FakeMeter is a Meter whose counters are advanced by hand. It stands in
// for a real sandbox when benchmarking code outside of one.
type FakeMeter struct {
	instructions atomic.Uint64
	heap         atomic.Uint64
	stable       atomic.Uint64
}

func (m *FakeMeter) Instructions() uint64     { return m.instructions.Load() }
func (m *FakeMeter) HeapSize() uint64         { return m.heap.Load() }
func (m *FakeMeter) StableMemorySize() uint64 { return m.stable.Load() }

// Execute advances the instruction counter by n.
func (m *FakeMeter) Execute(n uint64) {
	m.instructions.Add(n)
}

// GrowHeap grows the heap by the given number of pages.
func (m *FakeMeter) GrowHeap(pages uint64) {
	m.heap.Add(pages)
}

// GrowStableMemory grows stable memory by the given number of pages.
func (m *FakeMeter) GrowStableMemory(pages uint64) {
	m.stable.Add(pages)
}

// ShrinkHeap shrinks the heap by the given number of pages.
func (m *FakeMeter) ShrinkHeap(pages uint64) {
	m.heap.Add(^(pages - 1))
}
