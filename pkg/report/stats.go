// SPDX-License-Identifier: Apache-2.0

package report

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/xataio/sandbench/pkg/measurement"
)

// Summary aggregates the changes of one metric over the benchmark totals
// of a run. Scope entries are not counted.
type Summary struct {
	Metric measurement.Metric

	Total     int
	New       int
	Improved  int
	Regressed int
	Unchanged int
	Removed   int

	// Signed deltas of every benchmark with history
	AbsDeltas []int64

	// Percent deltas of every benchmark with a non-zero baseline, plus 0
	// for benchmarks that stayed at zero
	PercentDiffs []float64
}

// Range is the minimum, median and maximum of a set of values.
type Range[T int64 | float64] struct {
	Min    T
	Median T
	Max    T
}

// Summarize builds the summary of metric k over entries.
func Summarize(entries []Entry, k measurement.Metric, noiseThreshold float64) Summary {
	s := Summary{Metric: k}
	for _, e := range entries {
		if e.Benchmark.IsScope() {
			continue
		}
		s.Total++

		v := e.Values(k)
		switch measurement.Classify(v, noiseThreshold) {
		case measurement.New:
			s.New++
		case measurement.Removed:
			s.Removed++
		case measurement.Improved:
			s.Improved++
		case measurement.Regressed:
			s.Regressed++
		default:
			s.Unchanged++
		}

		if delta, ok := v.AbsDelta(); ok {
			s.AbsDeltas = append(s.AbsDeltas, delta)
		}
		if p, ok := v.PercentDiff(); ok && !math.IsInf(p, 0) {
			s.PercentDiffs = append(s.PercentDiffs, p)
		}
	}
	return s
}

// SummarizeAll builds a summary for every compared metric.
func SummarizeAll(entries []Entry, noiseThreshold float64) []Summary {
	summaries := make([]Summary, 0, len(measurement.AllMetrics))
	for _, k := range measurement.AllMetrics {
		summaries = append(summaries, Summarize(entries, k, noiseThreshold))
	}
	return summaries
}

// DeltaRange returns the range of the absolute deltas, if any. The median
// of an even number of deltas is rounded to the nearest integer.
func (s Summary) DeltaRange() (Range[int64], bool) {
	r, ok := RangeOf(stats.LoadRawData(s.AbsDeltas))
	if !ok {
		return Range[int64]{}, false
	}
	return Range[int64]{
		Min:    int64(r.Min),
		Median: int64(math.Round(r.Median)),
		Max:    int64(r.Max),
	}, true
}

// PercentRange returns the range of the percent deltas, if any.
func (s Summary) PercentRange() (Range[float64], bool) {
	return RangeOf(s.PercentDiffs)
}

// RangeOf returns the minimum, median and maximum of values. The median of
// an even number of values interpolates between the two middle ones.
func RangeOf(values stats.Float64Data) (Range[float64], bool) {
	if values.Len() == 0 {
		return Range[float64]{}, false
	}

	lo, err := stats.Min(values)
	if err != nil {
		return Range[float64]{}, false
	}
	median, err := stats.Median(values)
	if err != nil {
		return Range[float64]{}, false
	}
	hi, err := stats.Max(values)
	if err != nil {
		return Range[float64]{}, false
	}
	return Range[float64]{Min: lo, Median: median, Max: hi}, true
}
