// SPDX-License-Identifier: Apache-2.0

package benchmarks

import (
	"fmt"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xataio/sandbench/pkg/bench"
	"github.com/xataio/sandbench/pkg/measurement"
	"github.com/xataio/sandbench/pkg/report"
	"github.com/xataio/sandbench/pkg/trace"
)

const (
	unitEntriesPerSecond   = "entries/s"
	unitIntervalsPerSecond = "intervals/s"
	unitBenchesPerSecond   = "benches/s"
)

var sizes = []int{1_000, 10_000, 100_000}

var recorder = newReportRecorder()

func TestMain(m *testing.M) {
	code := m.Run()

	if path := os.Getenv("BENCHMARK_RESULTS_FILE"); path != "" && len(recorder.Reports) > 0 {
		if err := recorder.WriteLine(path); err != nil {
			fmt.Fprintf(os.Stderr, "writing benchmark results: %v\n", err)
			code = 1
		}
	}
	os.Exit(code)
}

func BenchmarkReconstruct(b *testing.B) {
	for _, size := range sizes {
		b.Run(strconv.Itoa(size), func(b *testing.B) {
			buf := trace.Encode(syntheticTrace(size))
			opts := trace.DefaultOptions()
			opts.MaxEntries = 2 * size

			b.ResetTimer()
			for range b.N {
				_, err := trace.Reconstruct(buf, uint64(size)*10, opts)
				require.NoError(b, err)
			}
			b.StopTimer()

			reportThroughput(b, "Reconstruct", size, unitEntriesPerSecond)
		})
	}
}

func BenchmarkAggregate(b *testing.B) {
	for _, size := range sizes {
		b.Run(strconv.Itoa(size), func(b *testing.B) {
			p, err := trace.FromEntries(syntheticTrace(size), uint64(size)*10, trace.Options{MaxNodes: size})
			require.NoError(b, err)

			b.ResetTimer()
			for range b.N {
				trace.Aggregate(p.Root)
			}
			b.StopTimer()

			reportThroughput(b, "Aggregate", size, unitEntriesPerSecond)
		})
	}
}

func BenchmarkMerge(b *testing.B) {
	for _, size := range sizes {
		b.Run(strconv.Itoa(size), func(b *testing.B) {
			intervals := syntheticIntervals(size)

			b.ResetTimer()
			for range b.N {
				bench.Merge(intervals)
			}
			b.StopTimer()

			reportThroughput(b, "Merge", size, unitIntervalsPerSecond)
		})
	}
}

func BenchmarkExtract(b *testing.B) {
	for _, size := range sizes {
		b.Run(strconv.Itoa(size), func(b *testing.B) {
			current, old := syntheticResults(size)

			b.ResetTimer()
			for range b.N {
				entries := report.Extract(current, old, report.WithRemoved())
				report.SummarizeAll(entries, 2.0)
			}
			b.StopTimer()

			reportThroughput(b, "Extract", size, unitBenchesPerSecond)
		})
	}
}

func reportThroughput(b *testing.B, name string, size int, unit string) {
	b.Helper()

	perSecond := float64(size) * float64(b.N) / b.Elapsed().Seconds()
	b.ReportMetric(perSecond, unit)
	recorder.AddReport(Report{
		Name:   name,
		Size:   size,
		Unit:   unit,
		Result: perSecond,
	})
}

// syntheticTrace returns size/2 calls spread over a handful of functions,
// nested three deep so that aggregation has siblings to merge.
func syntheticTrace(size int) []trace.Entry {
	entries := make([]trace.Entry, 0, size)
	var counter int64
	var stack []int32
	for len(entries)+len(stack) < size {
		if len(stack) < 3 {
			id := int32(len(entries) % 7)
			stack = append(stack, id)
			entries = append(entries, trace.Entry{FuncID: id, Counter: counter})
		} else {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			entries = append(entries, trace.Entry{FuncID: trace.ExitID(id), Counter: counter})
		}
		counter += 10
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		entries = append(entries, trace.Entry{FuncID: trace.ExitID(id), Counter: counter})
		counter += 10
	}
	return entries
}

// syntheticIntervals returns overlapping intervals, every third one nested
// in its predecessor.
func syntheticIntervals(size int) []bench.Interval {
	intervals := make([]bench.Interval, size)
	for i := range intervals {
		start := uint64(i) * 100
		if i%3 == 2 {
			start -= 50
		}
		intervals[i] = bench.Interval{
			StartInstructions: start,
			Calls:             1,
			Instructions:      80,
			HeapIncrease:      uint64(i % 2),
		}
	}
	return intervals
}

// syntheticResults returns a current and historical result set sharing
// most benchmarks, with a few added and removed on either side.
func syntheticResults(size int) (measurement.Results, measurement.Results) {
	current := make(measurement.Results, size)
	old := make(measurement.Results, size)
	for i := range size {
		name := fmt.Sprintf("bench_%06d", i)
		m := measurement.Measurement{Calls: 1, Instructions: uint64(1000 + i)}
		if i%10 != 0 {
			current[name] = measurement.BenchResult{
				Total:  m,
				Scopes: map[string]measurement.Measurement{"inner": {Calls: 2, Instructions: 500}},
			}
		}
		if i%10 != 1 {
			m.Instructions += uint64(i % 50)
			old[name] = measurement.BenchResult{Total: m}
		}
	}
	return current, old
}
