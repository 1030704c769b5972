// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"encoding/binary"
	"math"
)

// A trace buffer is laid out as
//
//	[enabled: u32][entry count: u64][entry count × (func id: i32, counter: i64)]
//
// with every field little-endian. A function entry logs its id (>= 0); the
// matching exit logs the bitwise complement of the id (^id, i.e. -id-1) so
// that function 0 has a distinct exit code.
const (
	headerSize = 4 + 8
	entrySize  = 4 + 8

	// DefaultMaxEntries bounds the number of entries accepted from a buffer.
	DefaultMaxEntries = 16 << 20
)

// Ids reserved for the implicit root call bracketing the whole trace.
const (
	SentinelStart int32 = math.MaxInt32
	SentinelEnd   int32 = ^SentinelStart
)

// Entry is one logged function entry or exit.
type Entry struct {
	FuncID  int32
	Counter int64
}

// IsExit reports whether e closes a call.
func (e Entry) IsExit() bool {
	return e.FuncID < 0
}

// ExitID returns the id logged when a call to funcID returns.
func ExitID(funcID int32) int32 {
	return ^funcID
}

// Decode parses a trace buffer. At most maxEntries entries are accepted; a
// non-positive maxEntries means DefaultMaxEntries.
func Decode(buf []byte, maxEntries int) ([]Entry, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if len(buf) < headerSize {
		return nil, TruncatedBufferError{Expected: headerSize, Actual: len(buf)}
	}

	if binary.LittleEndian.Uint32(buf[0:4]) == 0 {
		return nil, TracingDisabledError{}
	}

	count := binary.LittleEndian.Uint64(buf[4:12])
	if count > uint64(maxEntries) {
		return nil, EntryLimitError{Count: count, Limit: maxEntries}
	}
	if count == 0 {
		return nil, ErrEmptyTrace
	}

	need := headerSize + int(count)*entrySize
	if len(buf) < need {
		return nil, TruncatedBufferError{Expected: need, Actual: len(buf)}
	}

	entries := make([]Entry, count)
	for i := range entries {
		off := headerSize + i*entrySize
		e := Entry{
			FuncID:  int32(binary.LittleEndian.Uint32(buf[off : off+4])),
			Counter: int64(binary.LittleEndian.Uint64(buf[off+4 : off+12])),
		}
		if e.FuncID == SentinelStart || e.FuncID == SentinelEnd {
			return nil, ReservedFuncIDError{Index: i, FuncID: e.FuncID}
		}
		entries[i] = e
	}
	return entries, nil
}

// Encode lays entries out in the trace buffer format with the enabled flag
// set.
func Encode(entries []Entry) []byte {
	buf := make([]byte, headerSize+len(entries)*entrySize)
	binary.LittleEndian.PutUint32(buf[0:4], 1)
	binary.LittleEndian.PutUint64(buf[4:12], uint64(len(entries)))
	for i, e := range entries {
		off := headerSize + i*entrySize
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(e.FuncID))
		binary.LittleEndian.PutUint64(buf[off+4:off+12], uint64(e.Counter))
	}
	return buf
}
