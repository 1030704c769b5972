// SPDX-License-Identifier: Apache-2.0

package report

import "github.com/xataio/sandbench/pkg/measurement"

const (
	StatusNew     = "new"
	StatusRemoved = "removed"
)

// Benchmark identifies a compared entity: a benchmark's total, or one of
// its scopes.
type Benchmark struct {
	Name  string `json:"name"`
	Scope string `json:"scope,omitempty"`
}

// IsScope reports whether b refers to a scope rather than a total.
func (b Benchmark) IsScope() bool {
	return b.Scope != ""
}

// FullName is the display name of b, "name::scope" for scopes.
func (b Benchmark) FullName() string {
	if b.Scope == "" {
		return b.Name
	}
	return b.Name + "::" + b.Scope
}

// Entry is the comparison of one benchmark total or scope between the
// current run and history.
type Entry struct {
	// "new", "removed" or empty when the entity exists in both runs
	Status    string    `json:"status"`
	Benchmark Benchmark `json:"benchmark"`

	Calls                measurement.Values `json:"calls"`
	Instructions         measurement.Values `json:"instructions"`
	HeapIncrease         measurement.Values `json:"heap_increase"`
	StableMemoryIncrease measurement.Values `json:"stable_memory_increase"`
}

// Values returns the values of the given metric.
func (e Entry) Values(k measurement.Metric) measurement.Values {
	switch k {
	case measurement.HeapIncrease:
		return e.HeapIncrease
	case measurement.StableMemoryIncrease:
		return e.StableMemoryIncrease
	}
	return e.Instructions
}

// Change classifies the given metric under the noise threshold.
func (e Entry) Change(k measurement.Metric, noiseThreshold float64) measurement.Change {
	return measurement.Classify(e.Values(k), noiseThreshold)
}

// DisplayStatus is the short status shown next to the entry: the entry
// status when set, otherwise "+" if any metric regressed, "-" if any
// improved, "+/-" if both, and empty when nothing moved.
func (e Entry) DisplayStatus(noiseThreshold float64) string {
	if e.Status != "" {
		return e.Status
	}

	var regressed, improved bool
	for _, k := range measurement.AllMetrics {
		switch e.Change(k, noiseThreshold) {
		case measurement.Regressed:
			regressed = true
		case measurement.Improved:
			improved = true
		}
	}

	switch {
	case regressed && improved:
		return "+/-"
	case regressed:
		return "+"
	case improved:
		return "-"
	}
	return ""
}

func newEntry(status string, b Benchmark, current measurement.Measurement, old *measurement.Measurement) Entry {
	e := Entry{
		Status:               status,
		Benchmark:            b,
		Instructions:         measurement.MetricValues(measurement.Instructions, current, old),
		HeapIncrease:         measurement.MetricValues(measurement.HeapIncrease, current, old),
		StableMemoryIncrease: measurement.MetricValues(measurement.StableMemoryIncrease, current, old),
	}
	if old != nil {
		e.Calls = measurement.NewValues(current.Calls, &old.Calls)
	} else {
		e.Calls = measurement.NewValues(current.Calls, nil)
	}
	return e
}

func removedEntry(b Benchmark, old measurement.Measurement) Entry {
	return Entry{
		Status:               StatusRemoved,
		Benchmark:            b,
		Calls:                measurement.RemovedValues(old.Calls),
		Instructions:         measurement.RemovedValues(old.Instructions),
		HeapIncrease:         measurement.RemovedValues(old.HeapIncrease),
		StableMemoryIncrease: measurement.RemovedValues(old.StableMemoryIncrease),
	}
}
