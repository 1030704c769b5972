// SPDX-License-Identifier: Apache-2.0

package trace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xataio/sandbench/pkg/trace"
)

func TestReconstruct(t *testing.T) {
	t.Parallel()

	buf := trace.Encode([]trace.Entry{
		{FuncID: 1, Counter: 10},
		{FuncID: trace.ExitID(1), Counter: 40},
	})

	t.Run("root and child costs add up to the benchmark", func(t *testing.T) {
		p, err := trace.Reconstruct(buf, 100, trace.DefaultOptions())
		require.NoError(t, err)

		assert.False(t, p.Truncated)
		assert.False(t, p.Aggregated)
		assert.Equal(t, int64(70), p.Root.Cost)
		require.Len(t, p.Root.Children, 1)
		assert.Equal(t, int64(30), p.Root.Children[0].Cost)
		assert.Equal(t, int64(100), sumCost(p.Root))
	})

	t.Run("total covers the trace when it outlasts the benchmark", func(t *testing.T) {
		p, err := trace.Reconstruct(buf, 0, trace.DefaultOptions())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p.Root.TotalCost(), int64(0))
		assert.Equal(t, p.Root.TotalCost(), sumCost(p.Root))
	})

	t.Run("aggregated and truncated", func(t *testing.T) {
		buf := trace.Encode([]trace.Entry{
			{FuncID: 1, Counter: 0},
			{FuncID: 2, Counter: 1},
			{FuncID: trace.ExitID(2), Counter: 3},
			{FuncID: trace.ExitID(1), Counter: 5},
			{FuncID: 1, Counter: 5},
			{FuncID: trace.ExitID(1), Counter: 12},
		})

		p, err := trace.Reconstruct(buf, 100, trace.Options{Aggregate: true, MaxNodes: 2})
		require.NoError(t, err)

		assert.True(t, p.Aggregated)
		assert.True(t, p.Truncated)
		require.Len(t, p.Root.Children, 1)
		assert.Equal(t, int64(10), p.Root.Children[0].Cost)
		assert.Empty(t, p.Root.Children[0].Children)
	})

	t.Run("decode errors are returned", func(t *testing.T) {
		_, err := trace.Reconstruct(buf[:len(buf)-2], 100, trace.DefaultOptions())
		assert.ErrorAs(t, err, &trace.TruncatedBufferError{})
	})

	t.Run("unbalanced trace", func(t *testing.T) {
		buf := trace.Encode([]trace.Entry{{FuncID: 1, Counter: 10}})
		_, err := trace.Reconstruct(buf, 100, trace.DefaultOptions())
		assert.ErrorAs(t, err, &trace.UnbalancedTraceError{})
	})
}
