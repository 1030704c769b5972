// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/xataio/sandbench/pkg/measurement"
)

// WriteTable renders entries as a table with one row per entry.
func WriteTable(w io.Writer, entries []Entry, noiseThreshold float64) error {
	header := []string{"status", "name", "calls"}
	for _, k := range measurement.AllMetrics {
		header = append(header, k.Abbrev(), k.Abbrev()+" Δ%")
	}

	data := pterm.TableData{header}
	for _, e := range entries {
		row := []string{
			e.DisplayStatus(noiseThreshold),
			e.Benchmark.FullName(),
			formatValue(e.Calls),
		}
		for _, k := range measurement.AllMetrics {
			v := e.Values(k)
			row = append(row, formatValue(v), formatPercentDiff(v))
		}
		data = append(data, row)
	}

	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithRightAlignment().
		WithData(data).
		Srender()
	if err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}

	_, err = fmt.Fprintln(w, table)
	return err
}

// formatValue formats the current value, or the old one for removed
// entities.
func formatValue(v measurement.Values) string {
	if v.HasCurrent() {
		return FormatCurrent(v.Current())
	}
	if old, ok := v.Previous(); ok {
		return FormatCurrent(old)
	}
	return ""
}

func formatPercentDiff(v measurement.Values) string {
	p, ok := v.PercentDiff()
	if !ok {
		return ""
	}
	return FormatPercent(p)
}
