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

// Package iso8601 parses ISO 8601 date-times, durations and intervals.
// Calendar, week and ordinal dates are accepted in both the basic and the
// extended forms.
package iso8601

import (
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/participle"
	"github.com/alecthomas/participle/lexer"
	"github.com/pkg/errors"
)

type (
	expr struct {
		First  *element `@@`
		Second *element `[ "/" @@ ]`
	}

	element struct {
		Period *period `  @@`
		Moment *moment `| @@`
	}

	moment struct {
		Date *date  `@@`
		Time *clock `[ "T" @@ ]`
	}

	date struct {
		Head  string   `@Number`
		Parts []string `{ [ "-" ] ( @Week | @Number ) }`
	}

	clock struct {
		Head     string   `@Number`
		Parts    []string `{ ":" @Number }`
		Fraction string   `[ @Fraction ]`
		Zone     *zone    `[ @@ ]`
	}

	zone struct {
		UTC     bool   `  @"Z"`
		Sign    string `| @( "+" | "-" )`
		Hours   string `  @Number`
		Minutes string `  [ ":" @Number ]`
	}

	period struct {
		Date  []*periodPart `"P" { @@ }`
		Clock bool          `[ @"T"`
		Time  []*periodPart `  { @@ } ]`
	}

	periodPart struct {
		Value    string `@Number`
		Fraction string `[ @Fraction ]`
		Unit     string `@Letter`
	}
)

var (
	isoLexer = lexer.Must(newRegexpDefinition(`(?P<Week>W\d+(?:-\d)?)` +
		`|(?P<Number>\d+)` +
		`|(?P<Fraction>[.,]\d+)` +
		`|(?P<Letter>[A-Z])` +
		`|(?P<Punct>[-+:/])`,
	))
	momentParser   = participle.MustBuild(&moment{}, participle.Lexer(isoLexer))
	periodParser   = participle.MustBuild(&period{}, participle.Lexer(isoLexer))
	intervalParser = participle.MustBuild(&expr{}, participle.Lexer(isoLexer))
)

// Period is a nominal ISO 8601 duration. Years, months and days are calendar
// units, the rest is a fixed clock duration.
type Period struct {
	Years  int
	Months int
	Days   int
	Clock  time.Duration
}

// Parse parses an ISO 8601 date or date-time. The loc is used when the
// value carries no zone designator, nil means UTC.
func Parse(s string, loc *time.Location) (time.Time, error) {
	m := &moment{}
	if err := momentParser.ParseString(normalize(s), m); err != nil {
		return time.Time{}, errors.Wrapf(err, "could not parse %q as ISO 8601 date", s)
	}
	t, err := m.time(loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid ISO 8601 date %q", s)
	}
	return t, nil
}

// ParsePeriod parses an ISO 8601 duration like "P1Y2M10DT2H30M" or "P3W".
func ParsePeriod(s string) (Period, error) {
	p := &period{}
	if err := periodParser.ParseString(normalize(s), p); err != nil {
		return Period{}, errors.Wrapf(err, "could not parse %q as ISO 8601 duration", s)
	}
	res, err := p.period()
	if err != nil {
		return Period{}, errors.Wrapf(err, "invalid ISO 8601 duration %q", s)
	}
	return res, nil
}

// ParseInterval parses the "start/end", "start/duration" and
// "duration/end" interval forms.
func ParseInterval(s string, loc *time.Location) (time.Time, time.Time, error) {
	e := &expr{}
	if err := intervalParser.ParseString(normalize(s), e); err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(err, "could not parse %q as ISO 8601 interval", s)
	}
	if e.Second == nil {
		return time.Time{}, time.Time{}, errors.Errorf("%q is not an interval, the \"/\" separator is expected", s)
	}

	first, second := e.First, e.Second
	switch {
	case first.Moment != nil && second.Moment != nil:
		start, err := first.Moment.time(loc)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrapf(err, "invalid interval start in %q", s)
		}
		end, err := second.Moment.time(loc)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrapf(err, "invalid interval end in %q", s)
		}
		return start, end, nil
	case first.Moment != nil && second.Period != nil:
		start, err := first.Moment.time(loc)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrapf(err, "invalid interval start in %q", s)
		}
		p, err := second.Period.period()
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrapf(err, "invalid interval duration in %q", s)
		}
		return start, p.AddTo(start), nil
	case first.Period != nil && second.Moment != nil:
		p, err := first.Period.period()
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrapf(err, "invalid interval duration in %q", s)
		}
		end, err := second.Moment.time(loc)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrapf(err, "invalid interval end in %q", s)
		}
		return p.SubtractFrom(end), end, nil
	}
	return time.Time{}, time.Time{}, errors.Errorf("interval %q has no anchor date", s)
}

// AddTo returns t moved forward by the period
func (p Period) AddTo(t time.Time) time.Time {
	return t.AddDate(p.Years, p.Months, p.Days).Add(p.Clock)
}

// SubtractFrom returns t moved back by the period
func (p Period) SubtractFrom(t time.Time) time.Time {
	return t.Add(-p.Clock).AddDate(-p.Years, -p.Months, -p.Days)
}

// Duration returns the period as a fixed duration. Days count as 24 hours,
// years and months have no fixed length and make it fail.
func (p Period) Duration() (time.Duration, error) {
	if p.Years != 0 || p.Months != 0 {
		return 0, errors.Errorf("period %s has years or months, it has no fixed length", p)
	}
	return time.Duration(p.Days)*24*time.Hour + p.Clock, nil
}

// IsZero returns whether the period has no length
func (p Period) IsZero() bool {
	return p == Period{}
}

func (p Period) String() string {
	var sb strings.Builder
	sb.WriteString("P")
	writePart(&sb, int64(p.Years), "Y")
	writePart(&sb, int64(p.Months), "M")
	writePart(&sb, int64(p.Days), "D")
	if p.Clock != 0 {
		sb.WriteString("T")
		c := p.Clock
		h := c / time.Hour
		c -= h * time.Hour
		m := c / time.Minute
		c -= m * time.Minute
		writePart(&sb, int64(h), "H")
		writePart(&sb, int64(m), "M")
		if c != 0 {
			sb.WriteString(strconv.FormatFloat(c.Seconds(), 'f', -1, 64))
			sb.WriteString("S")
		}
	} else if p.IsZero() {
		sb.WriteString("T0S")
	}
	return sb.String()
}

func writePart(sb *strings.Builder, v int64, unit string) {
	if v != 0 {
		sb.WriteString(strconv.FormatInt(v, 10))
		sb.WriteString(unit)
	}
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func (m *moment) time(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	y, mon, d, err := m.Date.civil()
	if err != nil {
		return time.Time{}, err
	}
	if m.Time == nil {
		return time.Date(y, mon, d, 0, 0, 0, 0, loc), nil
	}

	c := m.Time
	h, mi, sec, err := c.hms()
	if err != nil {
		return time.Time{}, err
	}
	ns, err := fraction(c.Fraction)
	if err != nil {
		return time.Time{}, err
	}
	if c.Zone != nil {
		if loc, err = c.Zone.location(); err != nil {
			return time.Time{}, err
		}
	}
	return time.Date(y, mon, d, h, mi, sec, ns, loc), nil
}

// civil returns year, month and day. The day may run past the month for
// week and ordinal dates, time.Date normalizes it.
func (d *date) civil() (int, time.Month, int, error) {
	switch len(d.Head) {
	case 4:
		year := atoi(d.Head)
		if len(d.Parts) == 0 {
			return year, time.January, 1, nil
		}
		p := d.Parts[0]
		switch {
		case strings.HasPrefix(p, "W"):
			if len(d.Parts) != 1 {
				return 0, 0, 0, errors.Errorf("unexpected %q after the week date", d.Parts[1])
			}
			return weekDate(year, p[1:])
		case len(p) == 3:
			if len(d.Parts) != 1 {
				return 0, 0, 0, errors.Errorf("unexpected %q after the ordinal date", d.Parts[1])
			}
			return ordinalDate(year, p)
		case len(p) == 2:
			day := "01"
			switch len(d.Parts) {
			case 1:
			case 2:
				day = d.Parts[1]
			default:
				return 0, 0, 0, errors.Errorf("too many date parts %v", d.Parts)
			}
			return calendarDate(year, p, day)
		}
		return 0, 0, 0, errors.Errorf("unexpected date part %q", p)
	case 7:
		if len(d.Parts) != 0 {
			break
		}
		return ordinalDate(atoi(d.Head[:4]), d.Head[4:])
	case 8:
		if len(d.Parts) != 0 {
			break
		}
		return calendarDate(atoi(d.Head[:4]), d.Head[4:6], d.Head[6:])
	}
	return 0, 0, 0, errors.Errorf("unknown date form %q %v", d.Head, d.Parts)
}

func calendarDate(year int, month, day string) (int, time.Month, int, error) {
	if len(day) != 2 {
		return 0, 0, 0, errors.Errorf("day %q must have 2 digits", day)
	}
	m, d := atoi(month), atoi(day)
	if m < 1 || m > 12 {
		return 0, 0, 0, errors.Errorf("month %d is out of range", m)
	}
	if d < 1 || d > daysIn(year, time.Month(m)) {
		return 0, 0, 0, errors.Errorf("day %d is out of range for %d-%02d", d, year, m)
	}
	return year, time.Month(m), d, nil
}

func ordinalDate(year int, day string) (int, time.Month, int, error) {
	d := atoi(day)
	if d < 1 || d > time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay() {
		return 0, 0, 0, errors.Errorf("ordinal day %d is out of range for %d", d, year)
	}
	return year, time.January, d, nil
}

// weekDate accepts "ww", "wwd" and "ww-d" forms
func weekDate(year int, s string) (int, time.Month, int, error) {
	s = strings.Replace(s, "-", "", 1)
	wd := 1
	switch len(s) {
	case 2:
	case 3:
		wd = atoi(s[2:])
	default:
		return 0, 0, 0, errors.Errorf("unknown week date form W%s", s)
	}
	w := atoi(s[:2])
	if w < 1 || w > 53 {
		return 0, 0, 0, errors.Errorf("week %d is out of range", w)
	}
	if wd < 1 || wd > 7 {
		return 0, 0, 0, errors.Errorf("weekday %d is out of range", wd)
	}

	// the first ISO week contains January 4th
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	iwd := int(jan4.Weekday())
	if iwd == 0 {
		iwd = 7
	}
	monday := 4 - (iwd - 1)
	return year, time.January, monday + (w-1)*7 + wd - 1, nil
}

func (c *clock) hms() (h, m, s int, err error) {
	parts := append([]string{c.Head}, c.Parts...)
	if len(c.Parts) == 0 {
		switch len(c.Head) {
		case 2:
			parts = []string{c.Head}
		case 4:
			parts = []string{c.Head[:2], c.Head[2:]}
		case 6:
			parts = []string{c.Head[:2], c.Head[2:4], c.Head[4:]}
		default:
			return 0, 0, 0, errors.Errorf("unknown time form %q", c.Head)
		}
	}
	if len(parts) > 3 {
		return 0, 0, 0, errors.Errorf("too many time parts %v", parts)
	}

	vals := [3]int{}
	for i, p := range parts {
		if len(p) != 2 {
			return 0, 0, 0, errors.Errorf("time part %q must have 2 digits", p)
		}
		vals[i] = atoi(p)
	}
	h, m, s = vals[0], vals[1], vals[2]
	if h == 24 && (m != 0 || s != 0) || h > 24 || m > 59 || s > 59 {
		return 0, 0, 0, errors.Errorf("time %02d:%02d:%02d is out of range", h, m, s)
	}
	return h, m, s, nil
}

func (z *zone) location() (*time.Location, error) {
	if z.UTC {
		return time.UTC, nil
	}
	h, m := 0, 0
	switch len(z.Hours) {
	case 2:
		h = atoi(z.Hours)
		if z.Minutes != "" {
			if len(z.Minutes) != 2 {
				return nil, errors.Errorf("zone minutes %q must have 2 digits", z.Minutes)
			}
			m = atoi(z.Minutes)
		}
	case 4:
		if z.Minutes != "" {
			return nil, errors.Errorf("unexpected zone minutes %q", z.Minutes)
		}
		h, m = atoi(z.Hours[:2]), atoi(z.Hours[2:])
	default:
		return nil, errors.Errorf("unknown zone offset form %q", z.Hours)
	}
	if h > 23 || m > 59 {
		return nil, errors.Errorf("zone offset %s%02d:%02d is out of range", z.Sign, h, m)
	}
	off := h*3600 + m*60
	if z.Sign == "-" {
		off = -off
	}
	if off == 0 {
		return time.UTC, nil
	}
	return time.FixedZone("", off), nil
}

func (p *period) period() (Period, error) {
	if len(p.Date) == 0 && len(p.Time) == 0 {
		return Period{}, errors.Errorf("duration has no components")
	}
	if p.Clock && len(p.Time) == 0 {
		return Period{}, errors.Errorf("duration has no time components after T")
	}

	var res Period
	var clock float64
	last := -1
	for _, pp := range p.Date {
		idx := strings.Index("YMWD", pp.Unit)
		if idx < 0 || idx <= last {
			return Period{}, errors.Errorf("unexpected date unit %q", pp.Unit)
		}
		last = idx
		v, err := pp.value()
		if err != nil {
			return Period{}, err
		}
		whole := int(v)
		if float64(whole) != v && idx < 2 {
			return Period{}, errors.Errorf("fractional %s are not supported", pp.Unit)
		}
		switch pp.Unit {
		case "Y":
			res.Years = whole
		case "M":
			res.Months = whole
		case "W":
			res.Days += whole * 7
			clock += (v - float64(whole)) * 7 * 86400
		case "D":
			res.Days += whole
			clock += (v - float64(whole)) * 86400
		}
	}

	last = -1
	for _, pp := range p.Time {
		idx := strings.Index("HMS", pp.Unit)
		if idx < 0 || idx <= last {
			return Period{}, errors.Errorf("unexpected time unit %q", pp.Unit)
		}
		last = idx
		v, err := pp.value()
		if err != nil {
			return Period{}, err
		}
		switch pp.Unit {
		case "H":
			clock += v * 3600
		case "M":
			clock += v * 60
		case "S":
			clock += v
		}
	}
	res.Clock = time.Duration(clock*float64(time.Second) + 0.5)
	return res, nil
}

func (pp *periodPart) value() (float64, error) {
	v, err := strconv.ParseFloat(pp.Value+strings.Replace(pp.Fraction, ",", ".", 1), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "bad duration value %s%s", pp.Value, pp.Fraction)
	}
	return v, nil
}

// fraction turns ".123" into nanoseconds, the fraction is always of a second
func fraction(f string) (int, error) {
	if f == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat("0."+f[1:], 64)
	if err != nil {
		return 0, errors.Wrapf(err, "bad fraction %q", f)
	}
	return int(v*1e9 + 0.5), nil
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// atoi is called for digit-only tokens
func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
