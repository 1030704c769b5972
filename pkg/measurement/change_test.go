// SPDX-License-Identifier: Apache-2.0

package measurement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xataio/sandbench/pkg/measurement"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		values    measurement.Values
		threshold float64
		expected  measurement.Change
	}{
		{
			name:      "no history is new",
			values:    measurement.NewValues(10, nil),
			threshold: 2,
			expected:  measurement.New,
		},
		{
			name:      "ten percent increase regresses",
			values:    measurement.NewValues(11_000_000, ptr[uint64](10_000_000)),
			threshold: 2,
			expected:  measurement.Regressed,
		},
		{
			name:      "ten percent decrease improves",
			values:    measurement.NewValues(9_000_000, ptr[uint64](10_000_000)),
			threshold: 2,
			expected:  measurement.Improved,
		},
		{
			name:      "identical values are unchanged",
			values:    measurement.NewValues(10_000_000, ptr[uint64](10_000_000)),
			threshold: 2,
			expected:  measurement.Unchanged,
		},
		{
			name:      "identical values are unchanged with a zero threshold",
			values:    measurement.NewValues(10_000_000, ptr[uint64](10_000_000)),
			threshold: 0,
			expected:  measurement.Unchanged,
		},
		{
			name:      "change within threshold is unchanged",
			values:    measurement.NewValues(207, ptr[uint64](210)),
			threshold: 2,
			expected:  measurement.Unchanged,
		},
		{
			name:      "change exactly at threshold is significant",
			values:    measurement.NewValues(102, ptr[uint64](100)),
			threshold: 2,
			expected:  measurement.Regressed,
		},
		{
			name:      "regression from zero ignores threshold",
			values:    measurement.NewValues(10_000_000, ptr[uint64](0)),
			threshold: 1_000_000,
			expected:  measurement.Regressed,
		},
		{
			name:      "zero to zero is unchanged",
			values:    measurement.NewValues(0, ptr[uint64](0)),
			threshold: 2,
			expected:  measurement.Unchanged,
		},
		{
			name:      "missing current value is removed",
			values:    measurement.RemovedValues(5),
			threshold: 2,
			expected:  measurement.Removed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, measurement.Classify(tt.values, tt.threshold))
		})
	}
}

func TestClassifyIsThresholdMonotonic(t *testing.T) {
	t.Parallel()

	olds := []uint64{0, 1, 10, 100, 1_000, 10_000_000}
	news := []uint64{0, 1, 9, 10, 11, 95, 100, 103, 150, 1_000, 9_000_000, 12_000_000}
	thresholds := []float64{0, 0.5, 1, 2, 5, 10, 50, 100, 1000}

	for _, o := range olds {
		for _, n := range news {
			v := measurement.NewValues(n, ptr(o))
			prev := measurement.Classify(v, thresholds[0])
			for _, th := range thresholds[1:] {
				got := measurement.Classify(v, th)
				if prev == measurement.Unchanged {
					assert.Equal(t, measurement.Unchanged, got, "new=%d old=%d threshold=%v", n, o, th)
				}
				prev = got
			}
		}
	}

	for _, th := range thresholds {
		assert.Equal(t, measurement.New, measurement.Classify(measurement.NewValues(1, nil), th))
	}
}
