// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xataio/sandbench/pkg/measurement"
)

// Tab-separated so that formatted numbers and benchmark names never need
// quoting and spreadsheets import the file as is.
const csvDelimiter = '\t'

// WriteCSV writes one row per entry with the value and percent change of
// every metric. Percent cells are empty when there is no history or the
// baseline is zero.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	cw.Comma = csvDelimiter

	header := []string{"status", "name"}
	for _, k := range measurement.AllMetrics {
		header = append(header, k.String(), k.String()+" %")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, e := range entries {
		row := []string{e.Status, e.Benchmark.FullName()}
		for _, k := range measurement.AllMetrics {
			v := e.Values(k)
			row = append(row, csvValue(v), csvPercent(v))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", e.Benchmark.FullName(), err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvValue(v measurement.Values) string {
	if !v.HasCurrent() {
		return ""
	}
	return strconv.FormatUint(v.Current(), 10)
}

func csvPercent(v measurement.Values) string {
	old, ok := v.Previous()
	if !ok || old == 0 || !v.HasCurrent() {
		return ""
	}
	p, _ := v.PercentDiff()
	return fmt.Sprintf("%.2f%%", p)
}
