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
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestDTConstructors(t *testing.T) {
	dt := FromDate(2011, time.November, 17, 0, 0, 0, 0, nil)
	assert.Equal(t, int64(1321488000), dt.Epoch())
	assert.Equal(t, 1321488000.0, dt.EpochFloat())
	assert.Equal(t, dt, FromEpoch(1321488000))
	assert.Equal(t, dt, FromTime(time.Date(2011, 11, 16, 19, 0, 0, 0, time.FixedZone("", -5*3600))))

	ny, err := LoadLocation("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, dt.Add(5*time.Hour), FromDate(2011, time.November, 17, 0, 0, 0, 0, ny))

	now := Now()
	assert.InDelta(t, float64(time.Now().Unix()), now.EpochFloat(), 2)
}

func TestDTCompare(t *testing.T) {
	a := FromEpoch(100.2)
	b := FromEpoch(100.9)
	c := FromEpoch(101)

	assert.True(t, a.Equal(b))
	assert.Equal(t, 0, a.Compare(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.True(t, a.Before(c))
	assert.True(t, c.After(b))
	assert.Equal(t, -1, a.Compare(c))
	assert.Equal(t, 1, c.Compare(a))
	assert.False(t, a.Before(b))
	assert.False(t, a.After(b))

	assert.Equal(t, a, Min(a, c))
	assert.Equal(t, a, Min(c, a))
	assert.Equal(t, c, Max(a, c))
	assert.Equal(t, a, Max(a, b))

	// negative epochs floor towards the past
	assert.Equal(t, int64(-2), FromEpoch(-1.5).Epoch())
	assert.True(t, FromEpoch(-1.5).Before(FromEpoch(-1)))
}

func TestDTArithmetic(t *testing.T) {
	dt := FromDate(2016, time.January, 31, 10, 0, 0, 0, nil)

	assert.Equal(t, FromDate(2016, time.January, 31, 11, 30, 0, 0, nil), dt.Add(90*time.Minute))
	assert.Equal(t, FromDate(2016, time.January, 30, 10, 0, 0, 0, nil), dt.Subtract(24*time.Hour))
	assert.Equal(t, dt.EpochFloat()+1.5, dt.AddSeconds(1.5).EpochFloat())
	assert.Equal(t, dt.EpochFloat()-60, dt.SubtractSeconds(60).EpochFloat())
	assert.Equal(t, FromDate(2016, time.March, 2, 10, 0, 0, 0, nil), dt.AddDate(0, 1, 0))
	assert.Equal(t, FromDate(2017, time.February, 1, 10, 0, 0, 0, nil), dt.AddDate(1, 0, 1))
	assert.Equal(t, 0.25, dt.AddSeconds(0.25).AddDate(0, 0, 1).EpochFloat()-dt.AddDate(0, 0, 1).EpochFloat())

	assert.Equal(t, 90*time.Minute, dt.Add(90*time.Minute).Diff(dt))
	assert.Equal(t, -90*time.Minute, dt.Diff(dt.Add(90*time.Minute)))
}

func TestDTAccessors(t *testing.T) {
	dt := FromDate(2011, time.November, 17, 8, 9, 10, 0, nil)
	assert.Equal(t, 2011, dt.Year())
	assert.Equal(t, time.November, dt.Month())
	assert.Equal(t, 17, dt.Day())
	assert.Equal(t, 46, dt.Week())
	assert.Equal(t, 4, dt.Weekday())
	assert.Equal(t, 8, dt.Hour())
	assert.Equal(t, 9, dt.Minute())
	assert.Equal(t, 10, dt.Second())
	assert.Equal(t, 0, dt.Microsecond())

	dt = FromDate(1992, time.February, 29, 13, 12, 34, 0, nil)
	assert.Equal(t, 9, dt.Week())
	assert.Equal(t, 6, dt.Weekday())

	assert.Equal(t, 7, FromDate(2016, time.January, 3, 0, 0, 0, 0, nil).Weekday())
	assert.Equal(t, 123457, FromEpoch(1451606400.1234567).Microsecond())

	// the fraction never carries into the next second
	dt = FromEpoch(1.9999996)
	assert.Equal(t, int64(1), dt.Epoch())
	assert.Equal(t, 1, dt.Second())
	assert.Equal(t, 999999, dt.Microsecond())
	dt = FromEpoch(1451606400.9999997)
	assert.Equal(t, 0, dt.Second())
	assert.Equal(t, 2016, dt.Year())
	assert.Equal(t, "2016-01-01T00:00:00.999999Z", dt.ISO8601())
	dt = FromEpoch(-0.0000001)
	assert.Equal(t, int64(-1), dt.Epoch())
	assert.Equal(t, 1969, dt.Year())
	assert.Equal(t, 59, dt.Second())
}

func TestDTConversion(t *testing.T) {
	dt := FromDate(2016, time.January, 1, 0, 0, 0, 0, nil)
	assert.Equal(t, time.UTC, dt.Time().Location())
	assert.Equal(t, "UTC", dt.Timezone())
	assert.NotEmpty(t, dt.LocalTimezone())

	tm, err := dt.InZone("US/Eastern")
	require.NoError(t, err)
	assert.Equal(t, 19, tm.Hour())
	assert.Equal(t, 31, tm.Day())
	assert.Equal(t, "US/Eastern", tm.Location().String())

	assert.Equal(t, dt.Time(), dt.In(nil))
	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, 5, (dt.Time().Hour()-dt.In(est).Hour()+24)%24)

	_, err = dt.InZone("Mars/Olympus")
	assert.Error(t, err)

	assert.Equal(t, "maya.FromEpoch(1451606400)", dt.GoString())
}

func TestLoadLocation(t *testing.T) {
	for _, n := range []string{"", "UTC", "utc", " UTC "} {
		loc, err := LoadLocation(n)
		assert.NoError(t, err)
		assert.Equal(t, time.UTC, loc)
	}

	l1, err := LoadLocation("Europe/Paris")
	require.NoError(t, err)
	l2, err := LoadLocation("Europe/Paris")
	require.NoError(t, err)
	assert.True(t, l1 == l2)

	_, err = LoadLocation("Nowhere/Special")
	assert.Error(t, err)
}

func TestLoadLocationConcurrent(t *testing.T) {
	var eg errgroup.Group
	locs := make([]*time.Location, 16)
	for i := range locs {
		eg.Go(func() (err error) {
			locs[i], err = LoadLocation("Australia/Lord_Howe")
			return err
		})
	}
	require.NoError(t, eg.Wait())
	for _, l := range locs {
		assert.True(t, l == locs[0])
	}

	eg.Go(func() error {
		_, err := LoadLocation("Nowhere/Else")
		return err
	})
	assert.Error(t, eg.Wait())
}

func TestValues(t *testing.T) {
	dt := FromEpoch(1000)
	tm := time.Unix(2000, 0)

	v, err := ToDT(dt)
	assert.NoError(t, err)
	assert.Equal(t, dt, v)
	v, err = ToDT(&dt)
	assert.NoError(t, err)
	assert.Equal(t, dt, v)
	v, err = ToDT(tm)
	assert.NoError(t, err)
	assert.Equal(t, FromEpoch(2000), v)
	v, err = ToDT(&tm)
	assert.NoError(t, err)
	assert.Equal(t, FromEpoch(2000), v)

	for _, bad := range []interface{}{"invalid type", 1000, nil, (*DT)(nil)} {
		_, err = ToDT(bad)
		assert.Equal(t, ErrTypeMismatch, errors.Cause(err), "%v", bad)
	}

	c, err := CompareValues(dt, tm)
	assert.NoError(t, err)
	assert.Equal(t, -1, c)
	c, err = CompareValues(tm, dt)
	assert.NoError(t, err)
	assert.Equal(t, 1, c)
	_, err = CompareValues(dt, "invalid type")
	assert.Equal(t, ErrTypeMismatch, errors.Cause(err))
	_, err = CompareValues(3.0, dt)
	assert.Equal(t, ErrTypeMismatch, errors.Cause(err))

	d, err := ToDuration(60)
	assert.NoError(t, err)
	assert.Equal(t, time.Minute, d)
	d, err = ToDuration(int64(2))
	assert.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
	d, err = ToDuration(time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, time.Hour, d)
	_, err = ToDuration(1.5)
	assert.Equal(t, ErrTypeMismatch, errors.Cause(err))
	_, err = ToDuration("1h")
	assert.Equal(t, ErrTypeMismatch, errors.Cause(err))

	d, err = ToDuration(maxDurationSeconds)
	assert.NoError(t, err)
	assert.Equal(t, time.Duration(maxDurationSeconds)*time.Second, d)
	for _, big := range []interface{}{maxDurationSeconds + 1, -maxDurationSeconds - 1, uint(1) << 63} {
		_, err = ToDuration(big)
		assert.Equal(t, ErrTypeMismatch, errors.Cause(err), "%v", big)
	}
}
