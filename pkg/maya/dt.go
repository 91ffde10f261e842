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
	"math"
	"strconv"
	"time"
)

type (
	// DT is an instant in time stored as seconds since the Unix epoch in UTC.
	// The fractional part keeps sub-second precision for arithmetic and
	// exports, but all comparisons are made on whole seconds: two DTs
	// within the same second are equal. The zero value is the epoch start.
	DT struct {
		epoch float64
	}
)

// Now returns the DT for the current moment
func Now() DT {
	return FromTime(time.Now())
}

// FromEpoch returns the DT for the number of seconds since 1970-01-01T00:00:00Z
func FromEpoch(epoch float64) DT {
	return DT{epoch: epoch}
}

// FromTime returns the DT for t. The location of t is only used to find the
// absolute moment, DT never keeps it.
func FromTime(t time.Time) DT {
	return DT{epoch: float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)}
}

// FromDate is a shortcut for FromTime(time.Date(...)). nil loc means UTC.
func FromDate(year int, month time.Month, day, hour, min, sec, nsec int, loc *time.Location) DT {
	if loc == nil {
		loc = time.UTC
	}
	return FromTime(time.Date(year, month, day, hour, min, sec, nsec, loc))
}

// Epoch returns the whole seconds since the Unix epoch
func (dt DT) Epoch() int64 {
	return int64(math.Floor(dt.epoch))
}

// EpochFloat returns the seconds since the Unix epoch including the fraction
func (dt DT) EpochFloat() float64 {
	return dt.epoch
}

// Key returns a value suitable for map keys and hashing. It agrees with
// Equal, which the DT struct itself does not when used as a map key.
func (dt DT) Key() int64 {
	return dt.Epoch()
}

// Compare returns -1, 0 or 1 if dt is before, equal to or after other.
func (dt DT) Compare(other DT) int {
	a, b := dt.Epoch(), other.Epoch()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (dt DT) Equal(other DT) bool {
	return dt.Compare(other) == 0
}

func (dt DT) Before(other DT) bool {
	return dt.Compare(other) < 0
}

func (dt DT) After(other DT) bool {
	return dt.Compare(other) > 0
}

// Min returns the earliest of a and b, a if they are equal
func Min(a, b DT) DT {
	if b.Before(a) {
		return b
	}
	return a
}

// Max returns the latest of a and b, a if they are equal
func Max(a, b DT) DT {
	if b.After(a) {
		return b
	}
	return a
}

// Add returns dt shifted by d
func (dt DT) Add(d time.Duration) DT {
	return DT{epoch: dt.epoch + d.Seconds()}
}

// Subtract returns dt shifted back by d
func (dt DT) Subtract(d time.Duration) DT {
	return DT{epoch: dt.epoch - d.Seconds()}
}

func (dt DT) AddSeconds(sec float64) DT {
	return DT{epoch: dt.epoch + sec}
}

func (dt DT) SubtractSeconds(sec float64) DT {
	return DT{epoch: dt.epoch - sec}
}

// AddDate adds calendar years, months and days in UTC, normalizing the
// result the way time.Time.AddDate does (Oct 31 + 1 month is Dec 1).
func (dt DT) AddDate(years, months, days int) DT {
	frac := dt.epoch - math.Floor(dt.epoch)
	t := time.Unix(dt.Epoch(), 0).UTC().AddDate(years, months, days)
	return DT{epoch: float64(t.Unix()) + frac}
}

// Diff returns the signed duration dt - other
func (dt DT) Diff(other DT) time.Duration {
	return time.Duration((dt.epoch - other.epoch) * float64(time.Second))
}

// Time returns dt as a UTC time.Time with microsecond resolution. The
// second is always the one Epoch returns, fractions rounding up to a whole
// second stay at .999999.
func (dt DT) Time() time.Time {
	sec := math.Floor(dt.epoch)
	us := math.Round((dt.epoch - sec) * 1e6)
	if us > 999999 {
		us = 999999
	}
	return time.Unix(int64(sec), int64(us)*int64(time.Microsecond)).UTC()
}

// In returns dt as time.Time in the location provided, nil means UTC
func (dt DT) In(loc *time.Location) time.Time {
	if loc == nil {
		return dt.Time()
	}
	return dt.Time().In(loc)
}

// InZone returns dt as time.Time in the named timezone, e.g. "US/Eastern"
func (dt DT) InZone(name string) (time.Time, error) {
	loc, err := LoadLocation(name)
	if err != nil {
		return time.Time{}, err
	}
	return dt.In(loc), nil
}

// Timezone returns the timezone name of dt. It is always UTC.
func (dt DT) Timezone() string {
	return "UTC"
}

// LocalTimezone returns the name of the local timezone, for informational
// purposes only. UTC is returned if the local zone has no usable name.
func (dt DT) LocalTimezone() string {
	name := time.Local.String()
	if name == "" || name == "Local" {
		return dt.Timezone()
	}
	if _, err := LoadLocation(name); err != nil {
		return dt.Timezone()
	}
	return name
}

func (dt DT) Year() int {
	return dt.Time().Year()
}

func (dt DT) Month() time.Month {
	return dt.Time().Month()
}

func (dt DT) Day() int {
	return dt.Time().Day()
}

// Week returns the ISO 8601 week number
func (dt DT) Week() int {
	_, w := dt.Time().ISOWeek()
	return w
}

// Weekday returns the ISO day of the week, Monday is 1 and Sunday is 7
func (dt DT) Weekday() int {
	wd := int(dt.Time().Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

func (dt DT) Hour() int {
	return dt.Time().Hour()
}

func (dt DT) Minute() int {
	return dt.Time().Minute()
}

func (dt DT) Second() int {
	return dt.Time().Second()
}

func (dt DT) Microsecond() int {
	return dt.Time().Nanosecond() / int(time.Microsecond)
}

// GoString returns a Go expression that builds the same DT
func (dt DT) GoString() string {
	return "maya.FromEpoch(" + strconv.FormatFloat(dt.epoch, 'f', -1, 64) + ")"
}
