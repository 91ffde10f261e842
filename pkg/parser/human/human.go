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

// Package human parses date-times written by people, like "tomorrow noon",
// "3 days ago", "-1.5h" or "next friday". Everything is computed relative
// to a reference time, which is the current time by default.
package human

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/logrange/maya/pkg/parser/date"
	"github.com/logrange/range/pkg/utils/bytes"
	"github.com/pkg/errors"
	"github.com/xhit/go-str2duration/v2"
)

type (
	// Prefer tells which date a bare weekday like "friday" refers to
	Prefer string

	// Parser parses human date-times. It is safe for concurrent use.
	Parser struct {
		loc      *time.Location
		prefer   Prefer
		dayFirst bool
		fmts     []string
		dates    date.Parser
	}

	// Option allows to tune a parser built by NewParser
	Option func(p *Parser)

	// shift is a move in time, months and days are calendar units
	shift struct {
		months int
		days   int
		clock  time.Duration
	}
)

const (
	// PreferCurrent picks the weekday of the current ISO week
	PreferCurrent Prefer = "current"
	// PreferPast picks the closest weekday which is not after the reference day
	PreferPast Prefer = "past"
	// PreferFuture picks the closest weekday which is not before the reference day
	PreferFuture Prefer = "future"
)

var (
	numberWords = map[string]float64{
		"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11,
		"twelve": 12, "fifteen": 15, "twenty": 20, "thirty": 30, "forty": 40,
		"fifty": 50, "sixty": 60, "hundred": 100, "couple": 2, "few": 3,
	}

	units = map[string]shift{
		"s":         {clock: time.Second},
		"sec":       {clock: time.Second},
		"second":    {clock: time.Second},
		"m":         {clock: time.Minute},
		"min":       {clock: time.Minute},
		"minute":    {clock: time.Minute},
		"h":         {clock: time.Hour},
		"hr":        {clock: time.Hour},
		"hour":      {clock: time.Hour},
		"d":         {days: 1},
		"day":       {days: 1},
		"w":         {days: 7},
		"week":      {days: 7},
		"fortnight": {days: 14},
		"month":     {months: 1},
		"year":      {months: 12},
		"decade":    {months: 120},
	}

	weekdays = map[string]time.Weekday{
		"monday": time.Monday, "mon": time.Monday,
		"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
		"wednesday": time.Wednesday, "wed": time.Wednesday,
		"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
		"friday": time.Friday, "fri": time.Friday,
		"saturday": time.Saturday, "sat": time.Saturday,
		"sunday": time.Sunday, "sun": time.Sunday,
	}

	defParser = NewParser()
)

// ParsePrefer turns "current", "past" or "future" into Prefer, the empty
// string is PreferCurrent.
func ParsePrefer(s string) (Prefer, error) {
	switch p := Prefer(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PreferCurrent, nil
	case PreferCurrent, PreferPast, PreferFuture:
		return p, nil
	}
	return PreferCurrent, fmt.Errorf("unknown date preference %q, expected current, past or future", s)
}

// WithLocation sets the zone the days are counted in, UTC by default
func WithLocation(loc *time.Location) Option {
	return func(p *Parser) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithPrefer sets how bare weekdays are resolved
func WithPrefer(prefer Prefer) Option {
	return func(p *Parser) {
		if prefer != "" {
			p.prefer = prefer
		}
	}
}

// WithDayFirst makes the absolute numeric dates be read day first
func WithDayFirst(dayFirst bool) Option {
	return func(p *Parser) {
		p.dayFirst = dayFirst
	}
}

// WithFormats adds formats for absolute dates, see the date package
func WithFormats(fmts ...string) Option {
	return func(p *Parser) {
		p.fmts = append(p.fmts, fmts...)
	}
}

// NewParser creates new human date-time parser
func NewParser(opts ...Option) *Parser {
	p := &Parser{loc: time.UTC, prefer: PreferCurrent}
	for _, opt := range opts {
		opt(p)
	}
	p.dates = date.NewDefaultParser(
		date.WithLocation(p.loc),
		date.WithDayFirst(p.dayFirst),
		date.WithFormats(p.fmts...),
	)
	return p
}

// Parse parses s relative to the current time with the default parser
func Parse(s string) (time.Time, error) {
	return defParser.Parse(s)
}

// Location returns the zone the parser counts days in
func (p *Parser) Location() *time.Location {
	return p.loc
}

// Parse parses s relative to the current time
func (p *Parser) Parse(s string) (time.Time, error) {
	return p.ParseAt(s, time.Now())
}

// ParseAt parses s relative to ref. The following forms are understood:
//
//	relative:   '-1.5h', '+2d', '3 days ago', 'in 2 hours', 'one week from now', '1d2h ago'
//	named days: 'now', 'today', 'yesterday', 'tomorrow', 'monday', 'next friday', 'last week'
//	constants:  'minute', 'hour', 'day' and 'week' are the starts of the current ones
//	clock:      any of the above followed by 'noon', 'midnight', 'at 5pm' or '17:30'
//	absolute:   the date package formats, e.g. 'August 14, 2015' or '11-17-11 08:09:10'
//	epoch:      integer seconds since 1970-01-01 UTC
func (p *Parser) ParseAt(s string, ref time.Time) (time.Time, error) {
	ref = ref.In(p.loc)
	str := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	if str == "" {
		return time.Time{}, errors.New("empty date-time value")
	}

	if tm, ok, err := p.parseDay(str, ref); ok {
		return tm, err
	}

	if day, h, m, sec, ok := splitClock(str); ok {
		base := ref
		matched := true
		var err error
		if day != "" {
			base, matched, err = p.parseDay(day, ref)
		}
		if matched {
			if err != nil {
				return time.Time{}, err
			}
			return time.Date(base.Year(), base.Month(), base.Day(), h, m, sec, 0, base.Location()), nil
		}
	}

	orig := strings.TrimSpace(s)
	if tm, f := p.dates.Parse(bytes.StringToByteArray(orig)); f != nil {
		return anchor(tm, f.GetFormat(), ref), nil
	}

	if v, err := strconv.ParseInt(orig, 10, 64); err == nil {
		return time.Unix(v, 0).In(p.loc), nil
	}

	return time.Time{}, fmt.Errorf("could not parse value %q as relative or absolute date-time", s)
}

// parseDay parses expressions which are not absolute dates. The second
// value tells whether the expression was recognized at all.
func (p *Parser) parseDay(str string, ref time.Time) (time.Time, bool, error) {
	switch str {
	case "now", "today":
		return ref, true, nil
	case "yesterday":
		return ref.AddDate(0, 0, -1), true, nil
	case "tomorrow":
		return ref.AddDate(0, 0, 1), true, nil
	case "minute", "hour", "day", "week":
		return startOf(str, ref), true, nil
	}

	if tm, err := parseRelative(str, ref); err == nil {
		return tm, true, nil
	}

	fields := strings.Split(str, " ")
	last := len(fields) - 1
	switch {
	case len(fields) > 1 && fields[last] == "ago":
		sh, err := parseShift(fields[:last])
		if err != nil {
			return time.Time{}, false, nil
		}
		return sh.apply(ref, -1), true, nil
	case len(fields) > 2 && fields[last-1] == "from" && fields[last] == "now":
		sh, err := parseShift(fields[:last-1])
		if err != nil {
			return time.Time{}, false, nil
		}
		return sh.apply(ref, 1), true, nil
	case len(fields) > 1 && fields[0] == "in":
		sh, err := parseShift(fields[1:])
		if err != nil {
			return time.Time{}, false, nil
		}
		return sh.apply(ref, 1), true, nil
	case len(fields) == 2 && (fields[0] == "next" || fields[0] == "last" || fields[0] == "this"):
		return p.parseNamed(fields[0], fields[1], ref)
	case len(fields) == 1:
		if wd, ok := weekdays[fields[0]]; ok {
			return ref.AddDate(0, 0, p.preferDelta(wd, ref)), true, nil
		}
	}
	return time.Time{}, false, nil
}

// parseNamed handles "next|last|this <unit or weekday>"
func (p *Parser) parseNamed(rel, name string, ref time.Time) (time.Time, bool, error) {
	if wd, ok := weekdays[name]; ok {
		target, cur := isoWeekday(wd), isoWeekday(ref.Weekday())
		var delta int
		switch rel {
		case "next":
			if delta = (target - cur + 7) % 7; delta == 0 {
				delta = 7
			}
		case "last":
			if delta = (cur - target + 7) % 7; delta == 0 {
				delta = 7
			}
			delta = -delta
		default:
			delta = target - cur
		}
		return ref.AddDate(0, 0, delta), true, nil
	}

	u, ok := lookupUnit(name)
	if !ok {
		return time.Time{}, false, nil
	}
	switch rel {
	case "next":
		return u.apply(ref, 1), true, nil
	case "last":
		return u.apply(ref, -1), true, nil
	}
	return ref, true, nil
}

func (p *Parser) preferDelta(wd time.Weekday, ref time.Time) int {
	target, cur := isoWeekday(wd), isoWeekday(ref.Weekday())
	switch p.prefer {
	case PreferPast:
		return -((cur - target + 7) % 7)
	case PreferFuture:
		return (target - cur + 7) % 7
	}
	return target - cur
}

// parseRelative parses [+-]<number>(s|m|h|d|w), e.g. '-1.5h' is 1 hour
// 30 minutes before ref.
func parseRelative(dt string, ref time.Time) (time.Time, error) {
	if len(dt) < 3 || (dt[0] != '-' && dt[0] != '+') {
		return time.Time{}, fmt.Errorf("wrong relative format. expecting -<number>(s|m|h|d|w), but got %q", dt)
	}

	var mult float64
	switch dim := dt[len(dt)-1]; dim {
	case 's':
		mult = float64(time.Second)
	case 'm':
		mult = float64(time.Minute)
	case 'h':
		mult = float64(time.Hour)
	case 'd':
		mult = float64(24 * time.Hour)
	case 'w':
		mult = float64(7 * 24 * time.Hour)
	default:
		return time.Time{}, fmt.Errorf("unknown dimension %c at %s", dim, dt)
	}

	val, err := strconv.ParseFloat(dt[1:len(dt)-1], 64)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "could not parse value %s", dt[1:len(dt)-1])
	}

	d := time.Duration(val * mult)
	if dt[0] == '-' {
		d = -d
	}
	return ref.Add(d), nil
}

// parseShift parses amounts like "3 days", "an hour", "2 hours and 30
// minutes" or the compact "1d2h30m".
func parseShift(fields []string) (shift, error) {
	if len(fields) == 1 {
		if d, err := str2duration.ParseDuration(fields[0]); err == nil {
			return shift{clock: d}, nil
		}
	}

	var res shift
	for i := 0; i < len(fields); {
		if fields[i] == "and" || fields[i] == "," {
			i++
			continue
		}
		if i+1 >= len(fields) {
			return shift{}, fmt.Errorf("amount without unit at %q", fields[i])
		}

		n, ok := numberWords[fields[i]]
		if !ok {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return shift{}, errors.Wrapf(err, "bad amount %q", fields[i])
			}
			n = v
		}
		i++
		// "a couple of days", "a few hours"
		if fields[i] == "couple" || fields[i] == "few" {
			n = numberWords[fields[i]]
			if i++; i < len(fields) && fields[i] == "of" {
				i++
			}
			if i >= len(fields) {
				return shift{}, errors.New("amount without unit")
			}
		}

		u, ok := lookupUnit(strings.TrimSuffix(fields[i], ","))
		if !ok {
			return shift{}, fmt.Errorf("unknown unit %q", fields[i])
		}
		i++

		if err := res.add(u, n); err != nil {
			return shift{}, err
		}
	}
	if res == (shift{}) {
		return shift{}, errors.New("empty amount")
	}
	return res, nil
}

func (sh *shift) add(u shift, n float64) error {
	switch {
	case u.months != 0:
		if n != float64(int(n)) {
			return fmt.Errorf("fractional months or years are not supported: %v", n)
		}
		sh.months += int(n) * u.months
	case u.days != 0:
		days := n * float64(u.days)
		whole := int(days)
		sh.days += whole
		sh.clock += time.Duration((days - float64(whole)) * float64(24*time.Hour))
	default:
		sh.clock += time.Duration(n * float64(u.clock))
	}
	return nil
}

// apply moves t by the shift, the direction is given by sign
func (sh shift) apply(t time.Time, sign int) time.Time {
	return t.AddDate(0, sign*sh.months, sign*sh.days).Add(time.Duration(sign) * sh.clock)
}

func lookupUnit(name string) (shift, bool) {
	if u, ok := units[name]; ok {
		return u, true
	}
	if strings.HasSuffix(name, "s") {
		u, ok := units[name[:len(name)-1]]
		return u, ok
	}
	return shift{}, false
}

// splitClock cuts the time of day from the end of str. It returns the
// rest of the string and the clock.
func splitClock(str string) (string, int, int, int, bool) {
	fields := strings.Split(str, " ")
	n := len(fields)
	var h, m, s int
	var ok bool

	switch last := fields[n-1]; {
	case last == "noon":
		h, ok = 12, true
		n--
	case last == "midnight":
		ok = true
		n--
	case (last == "am" || last == "pm") && n > 1:
		if h, m, s, ok = parseClock(fields[n-2] + last); ok {
			n -= 2
		}
	default:
		if h, m, s, ok = parseClock(last); ok {
			n--
		}
	}
	if !ok {
		return "", 0, 0, 0, false
	}
	if n > 0 && fields[n-1] == "at" {
		n--
	}
	return strings.Join(fields[:n], " "), h, m, s, true
}

// parseClock parses "5pm", "5:30am", "17:30" and "17:30:15"
func parseClock(s string) (int, int, int, bool) {
	pm, am := strings.HasSuffix(s, "pm"), strings.HasSuffix(s, "am")
	if pm || am {
		s = s[:len(s)-2]
	} else if !strings.Contains(s, ":") {
		return 0, 0, 0, false
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, 0, 0, false
	}
	var vals [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || (i > 0 && (len(p) != 2 || v > 59)) {
			return 0, 0, 0, false
		}
		vals[i] = v
	}

	h := vals[0]
	if pm || am {
		if h < 1 || h > 12 {
			return 0, 0, 0, false
		}
		h %= 12
		if pm {
			h += 12
		}
	} else if h > 23 {
		return 0, 0, 0, false
	}
	return h, vals[1], vals[2], true
}

// startOf truncates ref to the start of the current minute, hour, day or
// ISO week (Monday).
func startOf(what string, ref time.Time) time.Time {
	y, M, d := ref.Date()
	h, m, _ := ref.Clock()
	switch what {
	case "minute":
		return time.Date(y, M, d, h, m, 0, 0, ref.Location())
	case "hour":
		return time.Date(y, M, d, h, 0, 0, 0, ref.Location())
	case "week":
		d -= isoWeekday(ref.Weekday()) - 1
	}
	return time.Date(y, M, d, 0, 0, 0, 0, ref.Location())
}

// anchor moves dates parsed from formats without a date or a year to
// ref's day or year.
func anchor(tm time.Time, format string, ref time.Time) time.Time {
	ref = ref.In(tm.Location())
	switch {
	case !strings.ContainsAny(format, "YMD"):
		y, M, d := ref.Date()
		return time.Date(y, M, d, tm.Hour(), tm.Minute(), tm.Second(), tm.Nanosecond(), tm.Location())
	case !strings.Contains(format, "Y"):
		year := ref.Year()
		if tm.Month() > ref.Month() {
			year--
		}
		return time.Date(year, tm.Month(), tm.Day(), tm.Hour(), tm.Minute(), tm.Second(), tm.Nanosecond(), tm.Location())
	}
	return tm
}

// isoWeekday returns 1 for Monday and 7 for Sunday
func isoWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}
