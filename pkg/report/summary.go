// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"

	"github.com/xataio/sandbench/pkg/measurement"
)

// WriteSummary renders per-metric summaries of a run.
func WriteSummary(w io.Writer, summaries []Summary) {
	fmt.Fprintln(w, "Summary:")
	for i, s := range summaries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeMetricSummary(w, s)
	}
}

func writeMetricSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "  %s:\n", s.Metric)

	counts := fmt.Sprintf("[total %d | new %d | improved %d | regressed %d | unchanged %d",
		s.Total, s.New, s.Improved, s.Regressed, s.Unchanged)
	if s.Removed > 0 {
		counts += fmt.Sprintf(" | removed %d", s.Removed)
	}
	fmt.Fprintf(w, "    counts:   %s]%s\n", counts, indicator(s))

	if r, ok := s.DeltaRange(); ok {
		fmt.Fprintf(w, "    change:   [min %s | med %s | max %s]\n",
			FormatHuman(r.Min), FormatHuman(r.Median), FormatHuman(r.Max))
	} else {
		fmt.Fprintln(w, "    change:   n/a")
	}

	if r, ok := s.PercentRange(); ok {
		fmt.Fprintf(w, "    change %%: [min %s | med %s | max %s]\n",
			FormatPercent(r.Min), FormatPercent(r.Median), FormatPercent(r.Max))
	} else {
		fmt.Fprintln(w, "    change %: n/a")
	}
}

func indicator(s Summary) string {
	switch {
	case s.Improved == 0 && s.Regressed == 0:
		return ""
	case s.Improved == 0:
		return " 🔴"
	case s.Regressed == 0:
		return " 🟢"
	}
	return " 🟢🔴"
}

// HasRegression reports whether the instructions of any benchmark total
// regressed.
func HasRegression(entries []Entry, noiseThreshold float64) bool {
	for _, e := range entries {
		if e.Benchmark.IsScope() {
			continue
		}
		if e.Change(measurement.Instructions, noiseThreshold) == measurement.Regressed {
			return true
		}
	}
	return false
}
