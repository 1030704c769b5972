// SPDX-License-Identifier: Apache-2.0

package measurement_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xataio/sandbench/pkg/measurement"
)

func TestPercentDiff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		new, old uint64
		expected float64
	}{
		{name: "increase", new: 11_000_000, old: 10_000_000, expected: 10},
		{name: "decrease", new: 9_000_000, old: 10_000_000, expected: -10},
		{name: "identical", new: 10_000_000, old: 10_000_000, expected: 0},
		{name: "small values", new: 207, old: 210, expected: -3.0 / 210 * 100},
		{name: "zero baseline and zero value", new: 0, old: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := measurement.NewValues(tt.new, ptr(tt.old))
			got, ok := v.PercentDiff()
			require.True(t, ok)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestPercentDiffFromZeroBaselineIsInfinite(t *testing.T) {
	t.Parallel()

	for _, n := range []uint64{1, 42, math.MaxUint32} {
		v := measurement.NewValues(n, ptr[uint64](0))
		got, ok := v.PercentDiff()
		require.True(t, ok)
		assert.True(t, math.IsInf(got, 1), "expected +Inf for new=%d", n)
	}
}

func TestPercentDiffRequiresBothValues(t *testing.T) {
	t.Parallel()

	_, ok := measurement.NewValues(10, nil).PercentDiff()
	assert.False(t, ok)

	_, ok = measurement.RemovedValues(10).PercentDiff()
	assert.False(t, ok)
}

func TestAbsDelta(t *testing.T) {
	t.Parallel()

	d, ok := measurement.NewValues(5, ptr[uint64](8)).AbsDelta()
	require.True(t, ok)
	assert.Equal(t, int64(-3), d)

	_, ok = measurement.NewValues(5, nil).AbsDelta()
	assert.False(t, ok)
}

func TestAbsDeltaSaturates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		new, old uint64
		want     int64
	}{
		{name: "large growth", new: math.MaxUint64, old: 0, want: math.MaxInt64},
		{name: "large drop", new: 0, old: math.MaxUint64, want: math.MinInt64},
		{name: "exact lower bound", new: 0, old: 1 << 63, want: math.MinInt64},
		{name: "above int64 range", new: 1<<63 + 10, old: 1 << 63, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := measurement.NewValues(tt.new, &tt.old).AbsDelta()
			require.True(t, ok)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestMetricValues(t *testing.T) {
	t.Parallel()

	current := measurement.Measurement{Calls: 1, Instructions: 100, HeapIncrease: 2, StableMemoryIncrease: 3}
	old := measurement.Measurement{Calls: 1, Instructions: 90, HeapIncrease: 2, StableMemoryIncrease: 0}

	v := measurement.MetricValues(measurement.Instructions, current, &old)
	assert.Equal(t, uint64(100), v.Current())
	prev, ok := v.Previous()
	require.True(t, ok)
	assert.Equal(t, uint64(90), prev)

	v = measurement.MetricValues(measurement.StableMemoryIncrease, current, nil)
	assert.Equal(t, uint64(3), v.Current())
	_, ok = v.Previous()
	assert.False(t, ok)
}

func TestValuesSerializeMissingHistoryAsNull(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(measurement.NewValues(7, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"new": 7, "old": null}`, string(out))
}

func TestResultsNamesAreSorted(t *testing.T) {
	t.Parallel()

	r := measurement.Results{
		"zeta":  {},
		"alpha": {Scopes: map[string]measurement.Measurement{"b": {}, "a": {}}},
		"mid":   {},
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
	assert.Equal(t, []string{"a", "b"}, r["alpha"].ScopeNames())
}

func ptr[T any](x T) *T { return &x }
