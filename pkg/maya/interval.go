// Copyright 2018-2019 The logrange Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package maya

import (
	"sort"
	"time"

	"github.com/pkg/errors"
)

type (
	// Interval represents the half-open range [start, end) of DTs. The start
	// is never after the end. An Interval with start equal to end is an
	// instant interval, it marks a single point in time and follows special
	// boundary rules in Intersection.
	//
	// Intervals are values: no operation modifies its receiver or arguments.
	Interval struct {
		start DT
		end   DT
	}

	// IntervalSpec describes an interval by exactly two of its start, end and
	// duration. It is used where the combination is only known at runtime,
	// for example when the values are read from a text record.
	IntervalSpec struct {
		Start    *DT
		End      *DT
		Duration *time.Duration
	}
)

// NewInterval returns [start, end), it fails if end is before start
func NewInterval(start, end DT) (Interval, error) {
	if end.Before(start) {
		return Interval{}, errors.Wrapf(ErrInvalidInterval, "start=%s end=%s", start.ISO8601(), end.ISO8601())
	}
	return Interval{start: start, end: end}, nil
}

// NewIntervalFromStart returns [start, start+d), d must not be negative
func NewIntervalFromStart(start DT, d time.Duration) (Interval, error) {
	if d < 0 {
		return Interval{}, errors.Wrapf(ErrInvalidInterval, "negative duration %s", d)
	}
	return NewInterval(start, start.Add(d))
}

// NewIntervalToEnd returns [end-d, end), d must not be negative
func NewIntervalToEnd(end DT, d time.Duration) (Interval, error) {
	if d < 0 {
		return Interval{}, errors.Wrapf(ErrInvalidInterval, "negative duration %s", d)
	}
	return NewInterval(end.Subtract(d), end)
}

// IntervalFromTimes returns the interval between two time.Time values
func IntervalFromTimes(start, end time.Time) (Interval, error) {
	return NewInterval(FromTime(start), FromTime(end))
}

// Build returns the interval described by s
func (s IntervalSpec) Build() (Interval, error) {
	n := 0
	if s.Start != nil {
		n++
	}
	if s.End != nil {
		n++
	}
	if s.Duration != nil {
		n++
	}
	if n != 2 {
		return Interval{}, errors.Wrapf(ErrIntervalArgs, "%d provided", n)
	}

	switch {
	case s.Duration == nil:
		return NewInterval(*s.Start, *s.End)
	case s.Start != nil:
		return NewIntervalFromStart(*s.Start, *s.Duration)
	}
	return NewIntervalToEnd(*s.End, *s.Duration)
}

func (iv Interval) Start() DT {
	return iv.start
}

func (iv Interval) End() DT {
	return iv.end
}

// Bounds returns start and end of the interval
func (iv Interval) Bounds() (DT, DT) {
	return iv.start, iv.end
}

// Duration returns the length of the interval in whole seconds
func (iv Interval) Duration() time.Duration {
	return time.Duration(iv.end.Epoch()-iv.start.Epoch()) * time.Second
}

// IsInstant returns whether the interval has zero length
func (iv Interval) IsInstant() bool {
	return iv.Duration() == 0
}

func (iv Interval) Midpoint() DT {
	return iv.start.AddSeconds(iv.Duration().Seconds() / 2)
}

// Compare orders intervals by start, then by end
func (iv Interval) Compare(other Interval) int {
	if c := iv.start.Compare(other.start); c != 0 {
		return c
	}
	return iv.end.Compare(other.end)
}

func (iv Interval) Equal(other Interval) bool {
	return iv.Compare(other) == 0
}

// Intersection returns the common part of iv and other. The second value is
// false when they do not overlap. Intervals touching at one boundary do not
// overlap, unless one of them is an instant interval: an instant intersects
// any interval which starts at it or spans it.
func (iv Interval) Intersection(other Interval) (Interval, bool) {
	start := Max(iv.start, other.start)
	end := Min(iv.end, other.end)

	eitherInstant := iv.IsInstant() || other.IsInstant()
	instantOverlap := iv.start.Equal(other.start) || !start.After(end)
	if (eitherInstant && instantOverlap) || start.Before(end) {
		return Interval{start: start, end: end}, true
	}
	return Interval{}, false
}

// Intersects returns whether Intersection of iv and other exists
func (iv Interval) Intersects(other Interval) bool {
	_, ok := iv.Intersection(other)
	return ok
}

// Combine merges iv and other into one interval if they intersect or are
// adjacent. Otherwise both are returned in sorted order.
func (iv Interval) Combine(other Interval) []Interval {
	first, second := iv, other
	if second.Compare(first) < 0 {
		first, second = second, first
	}
	if iv.Intersects(other) || iv.IsAdjacent(other) {
		return []Interval{{start: first.start, end: Max(first.end, second.end)}}
	}
	return []Interval{first, second}
}

// Subtract returns what remains of iv after removing other from it: iv
// itself when they do not intersect, nothing when other contains iv, or
// up to two fragments otherwise.
func (iv Interval) Subtract(other Interval) []Interval {
	if !iv.Intersects(other) {
		return []Interval{iv}
	}
	if other.Contains(iv) {
		return []Interval{}
	}

	res := make([]Interval, 0, 2)
	if iv.start.Before(other.start) {
		res = append(res, Interval{start: iv.start, end: other.start})
	}
	if iv.end.After(other.end) {
		res = append(res, Interval{start: other.end, end: iv.end})
	}
	return res
}

// Contains returns whether other lies within iv, boundaries included
func (iv Interval) Contains(other Interval) bool {
	return !iv.start.After(other.start) && !iv.end.Before(other.end)
}

// ContainsDT returns whether dt is in [start, end)
func (iv Interval) ContainsDT(dt DT) bool {
	return !dt.Before(iv.start) && dt.Before(iv.end)
}

// Has checks membership of a dynamically typed value: DT and time.Time
// are checked as points, Interval as a sub-interval. Other types give
// ErrTypeMismatch.
func (iv Interval) Has(v interface{}) (bool, error) {
	switch val := v.(type) {
	case DT:
		return iv.ContainsDT(val), nil
	case *DT:
		if val != nil {
			return iv.ContainsDT(*val), nil
		}
	case time.Time:
		return iv.ContainsDT(FromTime(val)), nil
	case Interval:
		return iv.Contains(val), nil
	case *Interval:
		if val != nil {
			return iv.Contains(*val), nil
		}
	}
	return false, errors.Wrapf(ErrTypeMismatch, "Interval.Has() accepts DT or Interval, but got %T", v)
}

// IsAdjacent returns whether iv and other touch at one boundary
func (iv Interval) IsAdjacent(other Interval) bool {
	return iv.start.Equal(other.end) || iv.end.Equal(other.start)
}

// Split returns an iterator over consecutive chunks of iv, each chunk long,
// starting at iv's start. The last chunk, shorter than chunk, is returned
// only when includeRemainder is true.
func (iv Interval) Split(chunk time.Duration, includeRemainder bool) (*SplitIterator, error) {
	if chunk <= 0 {
		return nil, errors.Wrapf(ErrNonPositive, "cannot split by %s", chunk)
	}
	return newSplitIterator(iv, chunk, includeRemainder), nil
}

// Quantize aligns the interval boundaries to multiples of grid counted from
// 1970-01-01T00:00 local time in loc (nil means UTC). By default the start is
// rounded up and the end down, so only whole grid cells remain. With snapOut
// the start is rounded down and the end up, so every touched cell is covered.
// If the start passes the end after rounding the result is the instant at
// the end. grid is counted in whole seconds and must be at least one second.
func (iv Interval) Quantize(grid time.Duration, snapOut bool, loc *time.Location) (Interval, error) {
	step := int64(grid / time.Second)
	if step <= 0 {
		return Interval{}, errors.Wrapf(ErrNonPositive, "cannot quantize by %s", grid)
	}
	if loc == nil {
		loc = time.UTC
	}

	origin := time.Date(1970, 1, 1, 0, 0, 0, 0, loc).Unix()
	start := iv.start.Epoch() - origin
	end := iv.end.Epoch() - origin

	if floorMod(start, step) != 0 && !snapOut {
		start += step
	}
	if floorMod(end, step) != 0 && snapOut {
		end += step
	}
	start -= floorMod(start, step)
	end -= floorMod(end, step)

	if start > end {
		start = end
	}
	return Interval{start: FromEpoch(float64(origin + start)), end: FromEpoch(float64(origin + end))}, nil
}

// QuantizeIn is Quantize with the timezone given by name
func (iv Interval) QuantizeIn(grid time.Duration, snapOut bool, zone string) (Interval, error) {
	loc, err := LoadLocation(zone)
	if err != nil {
		return Interval{}, err
	}
	return iv.Quantize(grid, snapOut, loc)
}

// Sort orders ivs in place, see Interval.Compare
func Sort(ivs []Interval) {
	sort.SliceStable(ivs, func(i, j int) bool {
		return ivs[i].Compare(ivs[j]) < 0
	})
}

// Flatten returns the smallest sorted list of intervals that covers the same
// time as ivs. Overlapping and adjacent intervals are merged. ivs is not
// modified.
func Flatten(ivs []Interval) []Interval {
	sorted := make([]Interval, len(ivs))
	copy(sorted, ivs)
	Sort(sorted)

	res := make([]Interval, 0, len(sorted))
	for _, iv := range sorted {
		if len(res) == 0 {
			res = append(res, iv)
			continue
		}
		last := len(res) - 1
		res = append(res[:last], iv.Combine(res[last])...)
	}
	return res
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
