// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"math"
	"strconv"
)

var magnitudes = []struct {
	divisor float64
	suffix  string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

func withMagnitude(v float64) (float64, string) {
	for _, m := range magnitudes {
		if math.Abs(v) >= m.divisor {
			return v / m.divisor, m.suffix
		}
	}
	return v, ""
}

// FormatHuman formats a signed value for the run summary, e.g. "1.50 M".
func FormatHuman(v int64) string {
	scaled, suffix := withMagnitude(float64(v))
	if suffix == "" {
		return strconv.FormatInt(v, 10)
	}
	return fmt.Sprintf("%.2f %s", scaled, suffix)
}

// FormatCurrent formats a counter for tables, e.g. "1.50M".
func FormatCurrent(v uint64) string {
	scaled, suffix := withMagnitude(float64(v))
	if suffix == "" {
		return strconv.FormatUint(v, 10)
	}
	return fmt.Sprintf("%.2f%s", scaled, suffix)
}

// FormatChange formats a signed delta for tables. Zero has no sign.
func FormatChange(v int64) string {
	if v == 0 {
		return "0"
	}
	scaled, suffix := withMagnitude(float64(v))
	if suffix == "" {
		return fmt.Sprintf("%+d", v)
	}
	return fmt.Sprintf("%+.2f%s", scaled, suffix)
}

// FormatPercent formats a percentage with a sign, except for values that
// round to zero.
func FormatPercent(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+inf%"
	case math.IsInf(v, -1):
		return "-inf%"
	case math.Abs(v) < 0.01:
		return fmt.Sprintf("%.2f%%", math.Abs(v))
	}
	return fmt.Sprintf("%+.2f%%", v)
}
