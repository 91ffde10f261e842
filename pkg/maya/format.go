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
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	layoutDateTime = "2006-01-02T15:04:05"
	layoutRFC2822  = "Mon, 02 Jan 2006 15:04:05"
	layoutICal     = "20060102T150405Z"
)

// ISO8601 returns dt in the form YYYY-MM-DDTHH:MM:SS[.ffffff]Z, the
// microseconds are written only if they are not zero.
func (dt DT) ISO8601() string {
	t := dt.Time()
	var sb strings.Builder
	sb.WriteString(t.Format(layoutDateTime))
	if us := t.Nanosecond() / int(time.Microsecond); us != 0 {
		fmt.Fprintf(&sb, ".%06d", us)
	}
	sb.WriteByte('Z')
	return sb.String()
}

// RFC2822 returns dt in the form "Mon, 21 Feb 1994 00:00:00 GMT"
func (dt DT) RFC2822() string {
	return dt.Time().Format(layoutRFC2822) + " GMT"
}

// RFC3339 returns dt in the form YYYY-MM-DDTHH:MM:SS.ffZ, the fraction
// is cut to hundredths of a second.
func (dt DT) RFC3339() string {
	t := dt.Time()
	return fmt.Sprintf("%s.%02dZ", t.Format(layoutDateTime), t.Nanosecond()/int(10*time.Millisecond))
}

// String returns the RFC 2822 form of dt
func (dt DT) String() string {
	return dt.RFC2822()
}

// SlangTime returns how long ago or ahead dt is, e.g. "3 hours ago"
func (dt DT) SlangTime() string {
	return dt.slangTimeAt(time.Now())
}

func (dt DT) slangTimeAt(now time.Time) string {
	return humanize.RelTime(dt.Time(), now, "ago", "from now")
}

// SlangDate returns the day of dt relative to today in the local timezone:
// "today", "tomorrow", "yesterday", or the date like "Jan 02" ("Jan 02 2006"
// if it is a year or more away).
func (dt DT) SlangDate() string {
	return dt.slangDateAt(time.Now(), time.Local)
}

func (dt DT) slangDateAt(now time.Time, loc *time.Location) string {
	t := dt.In(loc)
	now = now.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	days := int((day.Unix() - today.Unix()) / 86400)
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	case -1:
		return "yesterday"
	}
	if days >= 365 || days <= -365 {
		return t.Format("Jan 02 2006")
	}
	return t.Format("Jan 02")
}

// ISO8601 returns the interval in the form start/end
func (iv Interval) ISO8601() string {
	return iv.start.ISO8601() + "/" + iv.end.ISO8601()
}

// ICalendar returns a VCALENDAR document with one VEVENT for the interval
func (iv Interval) ICalendar() string {
	return strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"DTSTART:" + iv.start.Time().Format(layoutICal),
		"DTEND:" + iv.end.Time().Format(layoutICal),
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n")
}

func (iv Interval) String() string {
	return iv.ISO8601()
}

// GoString returns a Go-like representation of the interval
func (iv Interval) GoString() string {
	return fmt.Sprintf("maya.Interval{start=%#v, end=%#v}", iv.start, iv.end)
}
