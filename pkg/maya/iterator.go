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
	"io"
	"iter"
	"math"
	"time"

	"github.com/pkg/errors"
)

type (
	// DTIterator walks DTs from a start, step apart, while they are before
	// an end. The iterator is lazy: values are computed by Get.
	DTIterator struct {
		start DT
		cur   DT
		end   DT
		step  time.Duration
		idx   int64
	}

	// SplitIterator walks consecutive chunks of an interval
	SplitIterator struct {
		iv        Interval
		start     DT
		cur       DT
		chunk     time.Duration
		remainder bool
		idx       int64
	}
)

// Intervals returns an iterator over DTs starting at start, step apart, while
// the epoch is strictly less than the end epoch. Unlike DT.Before the
// fractions count here, so sub-second steps reach into the last second:
// 0 to 1.5 by 500ms gives 0, 0.5 and 1.0. step must be positive.
func Intervals(start, end DT, step time.Duration) (*DTIterator, error) {
	if step <= 0 {
		return nil, errors.Wrapf(ErrNonPositive, "cannot iterate with step %s", step)
	}
	return &DTIterator{start: start, cur: start, end: end, step: step}, nil
}

// Get returns the current DT, or io.EOF when the end is reached
func (it *DTIterator) Get() (DT, error) {
	if it.cur.epoch >= it.end.epoch {
		return DT{}, io.EOF
	}
	return it.cur, nil
}

// Next switches to the next DT. The value always moves forward, even when
// step is below the float precision of the epoch.
func (it *DTIterator) Next() {
	if it.cur.epoch >= it.end.epoch {
		return
	}
	it.idx++
	it.cur = advance(it.start, it.cur, it.step, it.idx)
}

// Seq returns the remaining values as a range-over-func sequence
func (it *DTIterator) Seq() iter.Seq[DT] {
	return func(yield func(DT) bool) {
		for ; ; it.Next() {
			dt, err := it.Get()
			if err != nil || !yield(dt) {
				return
			}
		}
	}
}

// All reads all remaining values
func (it *DTIterator) All() []DT {
	var res []DT
	for dt := range it.Seq() {
		res = append(res, dt)
	}
	return res
}

func newSplitIterator(iv Interval, chunk time.Duration, remainder bool) *SplitIterator {
	return &SplitIterator{iv: iv, start: iv.start, cur: iv.start, chunk: chunk, remainder: remainder}
}

// Get returns the current chunk, or io.EOF when there are no more chunks
func (si *SplitIterator) Get() (Interval, error) {
	if !si.cur.Before(si.iv.end) {
		return Interval{}, io.EOF
	}

	end := si.cur.Add(si.chunk)
	if !end.After(si.iv.end) {
		return Interval{start: si.cur, end: end}, nil
	}
	if si.remainder {
		return Interval{start: si.cur, end: si.iv.end}, nil
	}
	return Interval{}, io.EOF
}

// Next switches to the next chunk
func (si *SplitIterator) Next() {
	if !si.cur.Before(si.iv.end) {
		return
	}
	si.idx++
	si.cur = advance(si.start, si.cur, si.chunk, si.idx)
}

// Seq returns the remaining chunks as a range-over-func sequence
func (si *SplitIterator) Seq() iter.Seq[Interval] {
	return func(yield func(Interval) bool) {
		for ; ; si.Next() {
			iv, err := si.Get()
			if err != nil || !yield(iv) {
				return
			}
		}
	}
}

// All reads all remaining chunks
func (si *SplitIterator) All() []Interval {
	var res []Interval
	for iv := range si.Seq() {
		res = append(res, iv)
	}
	return res
}

// advance returns start + idx*step, but never a value which is not greater
// than prev.
func advance(start, prev DT, step time.Duration, idx int64) DT {
	epoch := start.epoch + float64(idx)*step.Seconds()
	if epoch <= prev.epoch {
		epoch = math.Nextafter(prev.epoch, math.Inf(1))
	}
	return DT{epoch: epoch}
}
