// SPDX-License-Identifier: Apache-2.0

package measurement

import (
	"maps"
	"slices"
)

// Measurement is a snapshot of the resources consumed over one execution
// span. All counters are deltas and never negative.
type Measurement struct {
	// Number of times the span was entered
	Calls uint64 `json:"calls"`

	// Instructions executed
	Instructions uint64 `json:"instructions"`

	// Increase in heap memory, in pages
	HeapIncrease uint64 `json:"heap_increase"`

	// Increase in stable memory, in pages
	StableMemoryIncrease uint64 `json:"stable_memory_increase"`
}

// Add returns the counter-wise sum of m and o.
func (m Measurement) Add(o Measurement) Measurement {
	return Measurement{
		Calls:                m.Calls + o.Calls,
		Instructions:         m.Instructions + o.Instructions,
		HeapIncrease:         m.HeapIncrease + o.HeapIncrease,
		StableMemoryIncrease: m.StableMemoryIncrease + o.StableMemoryIncrease,
	}
}

// BenchResult is the outcome of a single benchmark: the total measurement
// and the measurements of every named scope marked inside the benchmark.
type BenchResult struct {
	Total  Measurement            `json:"total"`
	Scopes map[string]Measurement `json:"scopes,omitempty"`
}

// ScopeNames returns the names of the scopes in r in sorted order.
func (r BenchResult) ScopeNames() []string {
	return slices.Sorted(maps.Keys(r.Scopes))
}

// Scope returns the measurement for the named scope, if present.
func (r BenchResult) Scope(name string) (Measurement, bool) {
	m, ok := r.Scopes[name]
	return m, ok
}

// Results is a set of benchmark results keyed by benchmark name.
type Results map[string]BenchResult

// Names returns the benchmark names in r in sorted order.
func (r Results) Names() []string {
	return slices.Sorted(maps.Keys(r))
}

// Metric identifies one of the counters of a Measurement that is compared
// between runs.
type Metric int

const (
	Instructions Metric = iota
	HeapIncrease
	StableMemoryIncrease
)

// AllMetrics lists the compared metrics in report order.
var AllMetrics = []Metric{Instructions, HeapIncrease, StableMemoryIncrease}

// Of extracts the metric's counter from m.
func (k Metric) Of(m Measurement) uint64 {
	switch k {
	case Instructions:
		return m.Instructions
	case HeapIncrease:
		return m.HeapIncrease
	case StableMemoryIncrease:
		return m.StableMemoryIncrease
	}
	return 0
}

func (k Metric) String() string {
	switch k {
	case Instructions:
		return "instructions"
	case HeapIncrease:
		return "heap_increase"
	case StableMemoryIncrease:
		return "stable_memory_increase"
	}
	return "unknown"
}

// Abbrev is the short column name used in tables.
func (k Metric) Abbrev() string {
	switch k {
	case Instructions:
		return "ins"
	case HeapIncrease:
		return "HI"
	case StableMemoryIncrease:
		return "SMI"
	}
	return "?"
}

// Unit is appended to printed values of the metric.
func (k Metric) Unit() string {
	switch k {
	case HeapIncrease, StableMemoryIncrease:
		return " pages"
	}
	return ""
}
