// SPDX-License-Identifier: Apache-2.0

package trace_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xataio/sandbench/pkg/trace"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	entries := []trace.Entry{
		{FuncID: 0, Counter: 10},
		{FuncID: trace.ExitID(0), Counter: 25},
	}

	t.Run("round trips encoded entries", func(t *testing.T) {
		got, err := trace.Decode(trace.Encode(entries), 0)
		require.NoError(t, err)
		assert.Equal(t, entries, got)
	})

	t.Run("function zero has a distinct exit id", func(t *testing.T) {
		assert.Equal(t, int32(-1), trace.ExitID(0))
		assert.True(t, trace.Entry{FuncID: trace.ExitID(0)}.IsExit())
		assert.False(t, trace.Entry{FuncID: 0}.IsExit())
	})

	t.Run("short header", func(t *testing.T) {
		_, err := trace.Decode([]byte{1, 0, 0}, 0)
		assert.ErrorAs(t, err, &trace.TruncatedBufferError{})
	})

	t.Run("tracing disabled", func(t *testing.T) {
		buf := trace.Encode(entries)
		binary.LittleEndian.PutUint32(buf[0:4], 0)

		_, err := trace.Decode(buf, 0)
		assert.ErrorAs(t, err, &trace.TracingDisabledError{})
	})

	t.Run("entry count past the end of the buffer", func(t *testing.T) {
		buf := trace.Encode(entries)

		_, err := trace.Decode(buf[:len(buf)-1], 0)
		var truncated trace.TruncatedBufferError
		require.ErrorAs(t, err, &truncated)
		assert.Equal(t, len(buf), truncated.Expected)
		assert.Equal(t, len(buf)-1, truncated.Actual)
	})

	t.Run("entry count over the limit", func(t *testing.T) {
		_, err := trace.Decode(trace.Encode(entries), 1)
		assert.ErrorAs(t, err, &trace.EntryLimitError{})
	})

	t.Run("no entries", func(t *testing.T) {
		_, err := trace.Decode(trace.Encode(nil), 0)
		assert.ErrorIs(t, err, trace.ErrEmptyTrace)
	})

	t.Run("reserved function id", func(t *testing.T) {
		buf := trace.Encode([]trace.Entry{
			{FuncID: trace.SentinelStart, Counter: 1},
			{FuncID: trace.SentinelEnd, Counter: 2},
		})

		_, err := trace.Decode(buf, 0)
		assert.ErrorAs(t, err, &trace.ReservedFuncIDError{})
	})
}
