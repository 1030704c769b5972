// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/xataio/sandbench/pkg/measurement"
)

var (
	regressedStyle = pterm.NewStyle(pterm.FgRed, pterm.Bold)
	improvedStyle  = pterm.NewStyle(pterm.FgGreen, pterm.Bold)
	newStyle       = pterm.NewStyle(pterm.FgBlue, pterm.Bold)
	nameStyle      = pterm.NewStyle(pterm.Bold)
)

// PrintBenchmark prints the total and scopes of one benchmark result,
// comparing every metric with the historical result if there is one.
func PrintBenchmark(w io.Writer, name string, current measurement.BenchResult, old *measurement.BenchResult, noiseThreshold float64) {
	if old != nil {
		fmt.Fprintf(w, "Benchmark: %s\n", nameStyle.Sprint(name))
	} else {
		fmt.Fprintf(w, "Benchmark: %s %s\n", nameStyle.Sprint(name), newStyle.Sprint("(new)"))
	}

	fmt.Fprintln(w, "  total:")
	var oldTotal *measurement.Measurement
	if old != nil {
		oldTotal = &old.Total
	}
	printMeasurement(w, current.Total, oldTotal, noiseThreshold)

	for _, scope := range current.ScopeNames() {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s (scope):\n", scope)
		var oldScope *measurement.Measurement
		if old != nil {
			if m, ok := old.Scope(scope); ok {
				oldScope = &m
			}
		}
		printMeasurement(w, current.Scopes[scope], oldScope, noiseThreshold)
	}
}

func printMeasurement(w io.Writer, current measurement.Measurement, old *measurement.Measurement, noiseThreshold float64) {
	for _, k := range measurement.AllMetrics {
		fmt.Fprintf(w, "    %s\n", DescribeChange(k, measurement.MetricValues(k, current, old), noiseThreshold))
	}
}

// DescribeChange renders one metric line of a benchmark print.
func DescribeChange(k measurement.Metric, v measurement.Values, noiseThreshold float64) string {
	line := fmt.Sprintf("%s: %d%s", k, v.Current(), k.Unit())

	old, ok := v.Previous()
	if !ok {
		return line + " (new)"
	}

	p, _ := v.PercentDiff()
	switch change := measurement.Classify(v, noiseThreshold); {
	case p == 0:
		return line + " (no change)"
	case old == 0:
		return regressedStyle.Sprint(line + " (regressed from 0)")
	case change == measurement.Unchanged:
		return fmt.Sprintf("%s (%.2f%%) (change within noise threshold)", line, p)
	case change == measurement.Regressed:
		return regressedStyle.Sprintf("%s (regressed by %.2f%%)", line, p)
	default:
		return improvedStyle.Sprintf("%s (improved by %.2f%%)", line, -p)
	}
}
