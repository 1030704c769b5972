// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"sync"

	"github.com/xataio/sandbench/pkg/measurement"
)

// Meter reads the resource counters of the sandbox the benchmark runs in.
type Meter interface {
	// Instructions executed so far
	Instructions() uint64

	// Current heap size, in pages
	HeapSize() uint64

	// Current stable memory size, in pages
	StableMemorySize() uint64
}

// Recorder collects the scope intervals recorded while a benchmark runs.
// It is passed to the benchmarked code instead of living in global state.
type Recorder struct {
	meter Meter

	mu        sync.Mutex
	intervals map[string][]Interval
}

// NewRecorder returns a Recorder reading counters from meter.
func NewRecorder(meter Meter) *Recorder {
	return &Recorder{
		meter:     meter,
		intervals: make(map[string][]Interval),
	}
}

// Scope starts measuring the named scope. The measurement is recorded when
// End is called on the returned guard, typically with defer:
//
//	defer r.Scope("insert").End()
//
// The empty name is reserved for the benchmark total; Scope panics if name
// is empty.
func (r *Recorder) Scope(name string) *Guard {
	if name == "" {
		panic("bench: empty scope name")
	}
	return &Guard{
		recorder:          r,
		name:              name,
		startInstructions: r.meter.Instructions(),
		startHeap:         r.meter.HeapSize(),
		startStable:       r.meter.StableMemorySize(),
	}
}

// Record appends an interval for the named scope.
func (r *Recorder) Record(name string, iv Interval) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.intervals[name] = append(r.intervals[name], iv)
}

// Reset drops every interval recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.intervals)
}

// Scopes merges the recorded intervals into one measurement per scope name.
func (r *Recorder) Scopes() map[string]measurement.Measurement {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.intervals) == 0 {
		return nil
	}

	scopes := make(map[string]measurement.Measurement, len(r.intervals))
	for name, ivs := range r.intervals {
		scopes[name] = Merge(ivs)
	}
	return scopes
}

// Guard is an open scope measurement.
type Guard struct {
	recorder *Recorder
	name     string
	once     sync.Once

	startInstructions uint64
	startHeap         uint64
	startStable       uint64
}

// End closes the scope and records its interval. Calling End more than once
// has no further effect.
func (g *Guard) End() {
	g.once.Do(func() {
		m := g.recorder.meter
		g.recorder.Record(g.name, Interval{
			StartInstructions:    g.startInstructions,
			Calls:                1,
			Instructions:         saturatingSub(m.Instructions(), g.startInstructions),
			HeapIncrease:         saturatingSub(m.HeapSize(), g.startHeap),
			StableMemoryIncrease: saturatingSub(m.StableMemorySize(), g.startStable),
		})
	})
}

// Run benchmarks fn, returning its total measurement and the merged
// measurements of every scope fn marked through the recorder.
func Run(meter Meter, fn func(r *Recorder)) measurement.BenchResult {
	r := NewRecorder(meter)

	startHeap := meter.HeapSize()
	startStable := meter.StableMemorySize()
	startInstructions := meter.Instructions()

	fn(r)

	total := measurement.Measurement{
		Calls:                1,
		Instructions:         saturatingSub(meter.Instructions(), startInstructions),
		HeapIncrease:         saturatingSub(meter.HeapSize(), startHeap),
		StableMemoryIncrease: saturatingSub(meter.StableMemorySize(), startStable),
	}

	return measurement.BenchResult{
		Total:  total,
		Scopes: r.Scopes(),
	}
}

// Counters can shrink (e.g. freed heap); a Measurement only reports growth.
func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
