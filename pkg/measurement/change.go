// SPDX-License-Identifier: Apache-2.0

package measurement

import "math"

// DefaultNoiseThreshold is the percentage below which a change is treated
// as noise.
const DefaultNoiseThreshold = 2.0

// Change classifies how a metric moved between two runs.
type Change int

const (
	Unchanged Change = iota
	New
	Improved
	Regressed
	Removed
)

func (c Change) String() string {
	switch c {
	case Unchanged:
		return "unchanged"
	case New:
		return "new"
	case Improved:
		return "improved"
	case Regressed:
		return "regressed"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Classify classifies v under the given noise threshold (a percentage).
//
// A zero baseline is classified by the sign of the delta alone, so any move
// away from zero is significant regardless of the threshold.
func Classify(v Values, noiseThreshold float64) Change {
	old, ok := v.Previous()
	if !ok {
		return New
	}
	if !v.HasCurrent() {
		return Removed
	}

	delta, _ := v.AbsDelta()
	if old == 0 {
		switch {
		case delta < 0:
			return Improved
		case delta > 0:
			return Regressed
		}
		return Unchanged
	}

	percent := float64(delta) / float64(old) * 100
	switch {
	case math.Abs(percent) < noiseThreshold:
		return Unchanged
	case percent < 0:
		return Improved
	case percent > 0:
		return Regressed
	}
	return Unchanged
}
