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
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervals(t *testing.T) {
	it, err := Intervals(base, base.Add(5*time.Second), time.Second)
	require.NoError(t, err)

	var res []DT
	for {
		dt, err := it.Get()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		res = append(res, dt)
		it.Next()
	}
	require.Len(t, res, 5)
	for i, dt := range res {
		assert.Equal(t, base.Add(time.Duration(i)*time.Second), dt)
	}

	// the iterator stays at the end
	it.Next()
	_, err = it.Get()
	assert.Equal(t, io.EOF, err)

	it, err = Intervals(base, base.Add(time.Hour), 25*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, []DT{base, base.Add(25 * time.Minute), base.Add(50 * time.Minute)}, it.All())

	it, err = Intervals(base, base, time.Second)
	require.NoError(t, err)
	assert.Nil(t, it.All())
}

func TestIntervalsSubSecond(t *testing.T) {
	it, err := Intervals(FromEpoch(0), FromEpoch(1.5), 500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []DT{FromEpoch(0), FromEpoch(0.5), FromEpoch(1)}, it.All())

	it, err = Intervals(FromEpoch(0), FromEpoch(1), 500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []DT{FromEpoch(0), FromEpoch(0.5)}, it.All())
}

func TestIntervalsNonPositiveStep(t *testing.T) {
	_, err := Intervals(base, base.Add(time.Hour), 0)
	assert.Equal(t, ErrNonPositive, errors.Cause(err))
	_, err = Intervals(base, base.Add(time.Hour), -time.Second)
	assert.Equal(t, ErrNonPositive, errors.Cause(err))
}

func TestIntervalsProgress(t *testing.T) {
	// a nanosecond is below the float precision of the epoch
	it, err := Intervals(base, base.Add(time.Hour), time.Nanosecond)
	require.NoError(t, err)

	var res []DT
	for dt := range it.Seq() {
		res = append(res, dt)
		if len(res) == 3 {
			break
		}
	}
	require.Len(t, res, 3)
	assert.True(t, res[0].EpochFloat() < res[1].EpochFloat())
	assert.True(t, res[1].EpochFloat() < res[2].EpochFloat())
}

func TestSplitIterator(t *testing.T) {
	it, err := ivDays(0, 3).Split(24*time.Hour, true)
	require.NoError(t, err)

	iv, err := it.Get()
	require.NoError(t, err)
	assert.Equal(t, ivDays(0, 1), iv)
	// Get does not move the iterator
	iv, err = it.Get()
	require.NoError(t, err)
	assert.Equal(t, ivDays(0, 1), iv)

	it.Next()
	var rest []Interval
	for iv := range it.Seq() {
		rest = append(rest, iv)
	}
	assert.Equal(t, []Interval{ivDays(1, 2), ivDays(2, 3)}, rest)
	_, err = it.Get()
	assert.Equal(t, io.EOF, err)

	// every Split call gives a fresh iterator
	iv1 := ivDays(0, 2)
	it1, _ := iv1.Split(24*time.Hour, false)
	it2, _ := iv1.Split(24*time.Hour, false)
	assert.Len(t, it1.All(), 2)
	assert.Len(t, it2.All(), 2)
	assert.Nil(t, it1.All())
}
