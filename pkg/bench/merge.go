// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"cmp"
	"slices"

	"github.com/xataio/sandbench/pkg/measurement"
)

// Interval is the measurement of one entry into a named scope, together
// with the instruction counter at which the scope was entered.
type Interval struct {
	StartInstructions    uint64
	Calls                uint64
	Instructions         uint64
	HeapIncrease         uint64
	StableMemoryIncrease uint64
}

// End is the instruction counter at which the scope was left. The interval
// covers [StartInstructions, End).
func (i Interval) End() uint64 {
	return i.StartInstructions + i.Instructions
}

// Merge collapses all intervals recorded under one scope name into a
// single measurement.
//
// Overlapping or nested intervals (recursive entries into the same scope)
// are merged into one elapsed span so shared execution is only counted once
// towards instructions. Calls and memory increases are summed over every
// interval.
func Merge(intervals []Interval) measurement.Measurement {
	var m measurement.Measurement
	if len(intervals) == 0 {
		return m
	}

	sorted := slices.Clone(intervals)
	slices.SortStableFunc(sorted, func(a, b Interval) int {
		return cmp.Compare(a.StartInstructions, b.StartInstructions)
	})

	start, end := sorted[0].StartInstructions, sorted[0].End()
	group := measurement.Measurement{}
	closeGroup := func() {
		m.Instructions += end - start
		m.Calls += group.Calls
		m.HeapIncrease += group.HeapIncrease
		m.StableMemoryIncrease += group.StableMemoryIncrease
	}

	for i, iv := range sorted {
		if i > 0 && iv.StartInstructions >= end {
			closeGroup()
			start, end = iv.StartInstructions, iv.End()
			group = measurement.Measurement{}
		}
		end = max(end, iv.End())
		group.Calls += iv.Calls
		group.HeapIncrease += iv.HeapIncrease
		group.StableMemoryIncrease += iv.StableMemoryIncrease
	}
	closeGroup()

	return m
}
