// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"errors"
	"fmt"
)

var ErrEmptyTrace = errors.New("trace contains no entries")

type TracingDisabledError struct{}

func (e TracingDisabledError) Error() string {
	return "instruction tracing was not enabled when the trace was recorded"
}

type TruncatedBufferError struct {
	Expected int
	Actual   int
}

func (e TruncatedBufferError) Error() string {
	return fmt.Sprintf("trace buffer is truncated: expected at least %d bytes, got %d", e.Expected, e.Actual)
}

type EntryLimitError struct {
	Count uint64
	Limit int
}

func (e EntryLimitError) Error() string {
	return fmt.Sprintf("trace has %d entries, more than the limit of %d", e.Count, e.Limit)
}

type ReservedFuncIDError struct {
	Index  int
	FuncID int32
}

func (e ReservedFuncIDError) Error() string {
	return fmt.Sprintf("entry %d uses reserved function id %d", e.Index, e.FuncID)
}

// UnbalancedTraceError is returned when an exit entry does not close the
// most recent unmatched entry, or when entries are left unmatched.
type UnbalancedTraceError struct {
	Index    int
	Expected int32
	Found    int32
	Reason   string
}

func (e UnbalancedTraceError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unbalanced trace at entry %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("unbalanced trace at entry %d: expected function id %d, found %d", e.Index, e.Expected, e.Found)
}

type NegativeCostError struct {
	Index  int
	FuncID int32
	Cost   int64
}

func (e NegativeCostError) Error() string {
	return fmt.Sprintf("call to function %d closed at entry %d has negative cost %d", e.FuncID, e.Index, e.Cost)
}
