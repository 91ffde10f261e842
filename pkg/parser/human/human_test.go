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

package human

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// a Wednesday
var ref = time.Date(2019, 3, 13, 15, 4, 5, 0, time.UTC)

func TestParseAt(t *testing.T) {
	day := func(d, h, m, s int) time.Time {
		return time.Date(2019, 3, d, h, m, s, 0, time.UTC)
	}
	tests := []struct {
		in  string
		exp time.Time
	}{
		{"now", ref},
		{"  Today ", ref},
		{"yesterday", day(12, 15, 4, 5)},
		{"tomorrow", day(14, 15, 4, 5)},
		{"tomorrow noon", day(14, 12, 0, 0)},
		{"yesterday at midnight", day(12, 0, 0, 0)},
		{"today at 5pm", day(13, 17, 0, 0)},
		{"tomorrow 5:30 am", day(14, 5, 30, 0)},
		{"noon", day(13, 12, 0, 0)},
		{"at 12am", day(13, 0, 0, 0)},
		{"two days ago noon", day(11, 12, 0, 0)},
		{"-1.5h", day(13, 13, 34, 5)},
		{"+2d", day(15, 15, 4, 5)},
		{"-30s", day(13, 15, 3, 35)},
		{"3 days ago", day(10, 15, 4, 5)},
		{"an hour ago", day(13, 14, 4, 5)},
		{"one hour ago", day(13, 14, 4, 5)},
		{"a couple of days ago", day(11, 15, 4, 5)},
		{"2 hours and 30 minutes ago", day(13, 12, 34, 5)},
		{"1d2h ago", day(12, 13, 4, 5)},
		{"in 10 minutes", day(13, 15, 14, 5)},
		{"in 1.5 days", day(15, 3, 4, 5)},
		{"one week from now", day(20, 15, 4, 5)},
		{"next week", day(20, 15, 4, 5)},
		{"last week", day(6, 15, 4, 5)},
		{"this week", ref},
		{"next month", time.Date(2019, 4, 13, 15, 4, 5, 0, time.UTC)},
		{"last year", time.Date(2018, 3, 13, 15, 4, 5, 0, time.UTC)},
		{"2 years ago", time.Date(2017, 3, 13, 15, 4, 5, 0, time.UTC)},
		{"next friday", day(15, 15, 4, 5)},
		{"next wednesday", day(20, 15, 4, 5)},
		{"last monday", day(11, 15, 4, 5)},
		{"last wednesday", day(6, 15, 4, 5)},
		{"this sunday", day(17, 15, 4, 5)},
		{"monday", day(11, 15, 4, 5)},
		{"friday at 9:15", day(15, 9, 15, 0)},
		{"minute", day(13, 15, 4, 0)},
		{"hour", day(13, 15, 0, 0)},
		{"day", day(13, 0, 0, 0)},
		{"week", day(11, 0, 0, 0)},
		{"17:30", day(13, 17, 30, 0)},
		{"11-17-11 08:09:10", time.Date(2011, 11, 17, 8, 9, 10, 0, time.UTC)},
		{"August 14, 2015", time.Date(2015, 8, 14, 0, 0, 0, 0, time.UTC)},
		{"jan/1/2011", time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2016-01-01 14:30", time.Date(2016, 1, 1, 14, 30, 0, 0, time.UTC)},
		{"Jan 02 10:00:00", time.Date(2019, 1, 2, 10, 0, 0, 0, time.UTC)},
		{"Dec 02 10:00:00", time.Date(2018, 12, 2, 10, 0, 0, 0, time.UTC)},
		{"1500000000", time.Unix(1500000000, 0).UTC()},
	}

	p := NewParser()
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			res, err := p.ParseAt(tc.in, ref)
			require.NoError(t, err)
			assert.True(t, tc.exp.Equal(res), "expected %s, but got %s", tc.exp, res)
		})
	}
}

func TestParseAtErrors(t *testing.T) {
	p := NewParser()
	for _, s := range []string{"", "   ", "another day", "3 parsecs ago", "in", "next lunch", "1.5 months ago", "tomorrow at 25:00"} {
		_, err := p.ParseAt(s, ref)
		assert.Error(t, err, s)
	}
}

func TestPrefer(t *testing.T) {
	// ref is Wednesday
	tests := []struct {
		prefer Prefer
		in     string
		day    int
	}{
		{PreferCurrent, "monday", 11},
		{PreferCurrent, "sunday", 17},
		{PreferCurrent, "wednesday", 13},
		{PreferPast, "monday", 11},
		{PreferPast, "thursday", 7},
		{PreferPast, "wed", 13},
		{PreferFuture, "monday", 18},
		{PreferFuture, "thursday", 14},
		{PreferFuture, "wed", 13},
	}
	for _, tc := range tests {
		p := NewParser(WithPrefer(tc.prefer))
		res, err := p.ParseAt(tc.in, ref)
		require.NoError(t, err)
		assert.Equal(t, tc.day, res.Day(), "%s %s", tc.prefer, tc.in)
	}

	pr, err := ParsePrefer(" Past")
	assert.NoError(t, err)
	assert.Equal(t, PreferPast, pr)
	pr, err = ParsePrefer("")
	assert.NoError(t, err)
	assert.Equal(t, PreferCurrent, pr)
	_, err = ParsePrefer("soon")
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	p := NewParser(WithLocation(ny))
	assert.Equal(t, ny, p.Location())

	// 2019-03-13 15:04:05 UTC is 11:04:05 in New York
	res, err := p.ParseAt("today noon", ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, 3, 13, 16, 0, 0, 0, time.UTC), res.UTC())

	res, err = p.ParseAt("day", ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, 3, 13, 4, 0, 0, 0, time.UTC), res.UTC())

	res, err = p.ParseAt("2016-01-01", ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2016, 1, 1, 5, 0, 0, 0, time.UTC), res.UTC())
}

func TestDayFirst(t *testing.T) {
	res, err := NewParser(WithDayFirst(true)).ParseAt("01/05/2016", ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC), res)

	res, err = NewParser().ParseAt("01/05/2016", ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2016, 1, 5, 0, 0, 0, 0, time.UTC), res)
}

func TestParse(t *testing.T) {
	before := time.Now()
	res, err := Parse("now")
	require.NoError(t, err)
	assert.False(t, res.Before(before.Truncate(time.Second)))
}
