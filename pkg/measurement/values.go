// SPDX-License-Identifier: Apache-2.0

package measurement

import (
	"math"

	"github.com/oapi-codegen/nullable"
)

// Values holds the current and the historical value of one metric of one
// compared entity. A missing old value means the entity has no history; a
// missing new value means it disappeared from the current run.
type Values struct {
	New nullable.Nullable[uint64] `json:"new"`
	Old nullable.Nullable[uint64] `json:"old"`
}

// NewValues builds Values for a current value and an optional old one.
func NewValues(current uint64, old *uint64) Values {
	v := Values{New: nullable.NewNullableWithValue(current)}
	if old != nil {
		v.Old = nullable.NewNullableWithValue(*old)
	} else {
		v.Old = nullable.NewNullNullable[uint64]()
	}
	return v
}

// RemovedValues builds Values for an entity only present in history.
func RemovedValues(old uint64) Values {
	return Values{
		New: nullable.NewNullNullable[uint64](),
		Old: nullable.NewNullableWithValue(old),
	}
}

// MetricValues extracts a metric from a current and an optional old
// measurement.
func MetricValues(k Metric, current Measurement, old *Measurement) Values {
	if old == nil {
		return NewValues(k.Of(current), nil)
	}
	o := k.Of(*old)
	return NewValues(k.Of(current), &o)
}

func get(n nullable.Nullable[uint64]) (uint64, bool) {
	v, err := n.Get()
	if err != nil {
		return 0, false
	}
	return v, true
}

// Current returns the new value, or zero if the entity was removed.
func (v Values) Current() uint64 {
	c, _ := get(v.New)
	return c
}

// HasCurrent reports whether a new value is present.
func (v Values) HasCurrent() bool {
	_, ok := get(v.New)
	return ok
}

// Previous returns the old value, if present.
func (v Values) Previous() (uint64, bool) {
	return get(v.Old)
}

// AbsDelta returns new - old. Both values must be present. Deltas outside
// the int64 range saturate at its bounds.
func (v Values) AbsDelta() (int64, bool) {
	n, okNew := get(v.New)
	o, okOld := get(v.Old)
	if !okNew || !okOld {
		return 0, false
	}
	if n >= o {
		return int64(min(n-o, math.MaxInt64)), true
	}
	if d := o - n; d <= math.MaxInt64 {
		return -int64(d), true
	}
	return math.MinInt64, true
}

// PercentDiff returns the change from old to new as a percentage of old.
// When old is zero the result is 0 if new is also zero and an infinity with
// the sign of the delta otherwise. Both values must be present.
func (v Values) PercentDiff() (float64, bool) {
	delta, ok := v.AbsDelta()
	if !ok {
		return 0, false
	}
	o, _ := get(v.Old)
	if o == 0 {
		switch {
		case delta > 0:
			return math.Inf(1), true
		case delta < 0:
			return math.Inf(-1), true
		}
		return 0, true
	}
	return float64(delta) / float64(o) * 100, true
}
