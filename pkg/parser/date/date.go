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

// Package date contains a table driven parser for machine produced date-time
// strings. Formats are written in a user friendly notation, e.g.
// "YYYY-MM-DD HH:mm:ss", and turned into go-lang layouts plus regular
// expressions which check the whole input before it is parsed.
package date

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	rbytes "github.com/logrange/range/pkg/utils/bytes"
)

type (
	// Parser parses the given byte slice in accordance with the date formats
	// it has. It returns the parsed date and the format which matched, or
	// the zero time.Time and nil if no format matches the whole input.
	//
	// Formats are checked in the order they were provided, the first
	// matching one wins.
	Parser interface {
		Parse(buf []byte) (time.Time, *Format)
	}

	// Format is one known date-time format of a parser
	Format struct {
		frmt        string         // user friendly format (e.g. YYYY/MM/DD)
		dLayout     string         // go-lang layout of frmt
		dRegexp     *regexp.Regexp // regexp which must match the whole input
		hasLocation bool           // if format doesn't have location, parser's location is used
		hasYear     bool           // if format doesn't have year, current/previous year is used
		noDate      bool           // if format doesn't have date, usually time only like 'hh:mm:ss.SSS'
		parser      *parser
	}

	// Option allows to tune a parser built by NewParser
	Option func(p *parser)

	parser struct {
		formats  []*Format
		usrFmts  []string
		loc      *time.Location
		now      func() time.Time
		dayFirst bool
	}

	// term structure describes transformation from user friendly
	// term format (e.g. YYYY/MM/DD) to go-lang term layout (2006/01/02)
	// and a regular expression that can be used for finding the term
	// (i.e. with this format/layout) in a text.
	term struct {
		format string
		layout string
		expr   string
	}
)

const (
	dateGroup = "date"
)

var (
	// KnownFormats are the formats of the default parser. Numeric dates are
	// month first, see WithDayFirst.
	KnownFormats = []string{
		// rfc 2822, rfc 1123, ctime and alike
		"DDD, DD MMM YYYY HH:mm:ss ZZZ",
		"DDD, DD MMM YYYY HH:mm:ss ZZZZ",
		"DDD, D MMM YYYY HH:mm:ss ZZZ",
		"DDD, D MMM YYYY HH:mm:ss ZZZZ",
		"DD MMM YYYY HH:mm:ss ZZZZ",
		"DD MMM YYYY HH:mm:ss ZZZ",
		"DDD MMM _D HH:mm:ss YYYY",
		"DDD MMM _D HH:mm:ss ZZZ YYYY",
		"DDD MMM DD HH:mm:ss ZZZZ YYYY",
		"DDDD, DD-MMM-YY HH:mm:ss ZZZ",

		// month names
		"MMMM D, YYYY h:mm:ss P",
		"MMM D, YYYY h:mm:ss P",
		"MMMM D, YYYY HH:mm:ss",
		"MMMM D, YYYY HH:mm",
		"MMMM D, YYYY",
		"MMM D, YYYY",
		"MMMM D YYYY",
		"MMM D YYYY",
		"DD MMM YYYY, HH:mm",
		"D MMMM YYYY",
		"D MMM YYYY",
		"YYYY-MMM-DD",
		"MMM/D/YYYY",
		"MMM-D-YYYY",
		"DD/MMM/YYYY:HH:mm:ss ZZZZ",

		// mm/dd/yy
		"MM/DD/YYYY HH:mm:ss.SSS",
		"MM/DD/YYYY HH:mm:ss",
		"M/D/YYYY HH:mm:ss",
		"M/D/YYYY hh:mm:ss P",
		"M/D/YYYY h:mm:ss P",
		"MM/DD/YYYY HH:mm",
		"M/D/YYYY HH:mm",
		"M/D/YYYY h:mm P",
		"M/D/YY HH:mm",
		"MM/DD/YYYY",
		"M/D/YYYY",
		"MM/DD/YY",
		"M/D/YY",
		"MM-DD-YYYY HH:mm:ss",
		"MM-DD-YY HH:mm:ss",
		"MM-DD-YYYY",
		"MM-DD-YY",
		"MM.DD.YYYY",
		"MM.DD.YY",

		// yyyy/mm/dd
		"YYYY/MM/DD HH:mm:ss.SSS",
		"YYYY/MM/DD HH:mm:ss",
		"YYYY/M/D HH:mm:ss",
		"YYYY/MM/DD HH:mm",
		"YYYY/M/D HH:mm",
		"YYYY/MM/DD",
		"YYYY/M/D",

		// yyyy-mm-ddThh
		"YYYY-MM-DDTHH:mm:ss.SSSZZZZZ",
		"YYYY-MM-DDTHH:mm:ss.SSSZZZZ",
		"YYYY-MM-DDTHH:mm:ss.SSSZ",
		"YYYY-MM-DDTHH:mm:ssZZZZZ",
		"YYYY-MM-DDTHH:mm:ssZZZZ",
		"YYYY-MM-DDTHH:mm:ssZ",
		"YYYY-MM-DDTHH:mm:ss.SSS",
		"YYYY-MM-DDTHH:mm:ss",
		"YYYY-MM-DDTHH:mm",

		// yyyy-mm-dd hh:mm:ss
		"YYYY-MM-DD HH:mm:ss.SSS ZZZZ ZZZ",
		"YYYY-MM-DD HH:mm:ss.SSS ZZZZ",
		"YYYY-MM-DD HH:mm:ss.SSS",
		"YYYY-MM-DD HH:mm:ss ZZZZZ",
		"YYYY-MM-DD HH:mm:ssZZZZZ",
		"YYYY-MM-DD HH:mm:ss ZZZZ ZZZ",
		"YYYY-MM-DD HH:mm:ss ZZZZ",
		"YYYY-MM-DD HH:mm:ss ZZZ",
		"YYYY-MM-DD hh:mm:ss P",
		"YYYY-MM-DD HH:mm:ss",
		"YYYY-MM-DD HH:mm",
		"YYYY-MM-DD",

		// no year
		"DDD MMM _D HH:mm:ss.SSS",
		"DDD MMM DD HH:mm:ss.SSS",
		"MMM DD HH:mm:ss",
		"MMM _D HH:mm:ss",

		// todays time
		"HH:mm:ss.SSS ZZZZ",
		"HH:mm:ss ZZZZ",
		"HH:mm ZZZZ",
		"HH:mm:ss.SSS",
		"HH:mm:ss",
		"HH:mm",
	}

	// Descending order of the 'alike' symbols is important
	// we're going to do the replacements in the given order,
	// so we want the 'larger' terms to be replaced first...
	terms = []term{
		{"YYYY", "2006", "[1-2]\\d{3}"},
		{"YY", "06", "\\d{2}"},
		{"MMMM", "January", "[A-Za-z]{3,9}"},
		{"MMM", "Jan", "[A-Za-z]{3}"},
		{"MM", "01", "[01]\\d"},
		{"M", "1", "\\d{1,2}"},
		{"DDDD", "Monday", "[A-Za-z]{6,9}"},
		{"DDD", "Mon", "[A-Za-z]{3}"},
		{"DD", "02", "\\d{2}"},
		{"_D", "_2", "(?: \\d{1}|\\d{2})"},
		{"D", "2", "\\d{1,2}"},
		{"HH", "15", "\\d{2}"},
		{"hh", "03", "\\d{2}"},
		{"h", "3", "\\d{1,2}"},
		{"mm", "04", "\\d{2}"},
		{"m", "4", "\\d{1,2}"},
		{"ss", "05", "\\d{2}"},
		{"s", "5", "\\d{1,2}"},
		{".SSS", ".999999999", "[.,]\\d+"},
		{"P", "PM", "(?:am|AM|pm|PM)"},
		{"ZZZZZ", "-07:00", "[+-][0-9]{2}:[0-9]{2}"},
		{"ZZZZ", "-0700", "[+-][0-9]{4}"},
		{"ZZZ", "MST", "[A-Z]{3,4}"},
		{"ZZ", "Z07:00", "Z[0-9]{2}:[0-9]{2}"},
	}

	defParser = NewDefaultParser()
)

//===================== parser =====================

// Parse parses data with the default parser
func Parse(data []byte) (time.Time, error) {
	tm, f := defParser.Parse(data)
	if f == nil {
		return tm, fmt.Errorf("could not parse %q, no known format matches it", data)
	}
	return tm, nil
}

// WithLocation sets the location for formats without a zone, UTC by default
func WithLocation(loc *time.Location) Option {
	return func(p *parser) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithClock sets the source of the current time, which is used for the
// formats without year or date.
func WithClock(now func() time.Time) Option {
	return func(p *parser) {
		if now != nil {
			p.now = now
		}
	}
}

// WithDayFirst makes numeric dates like 01/05/2016 be read day first
func WithDayFirst(dayFirst bool) Option {
	return func(p *parser) {
		p.dayFirst = dayFirst
	}
}

// WithFormats adds user defined formats, they are checked before the
// parser's own formats.
func WithFormats(usrFmts ...string) Option {
	return func(p *parser) {
		p.usrFmts = append(p.usrFmts, usrFmts...)
	}
}

// NewDefaultParser returns the parser for KnownFormats
func NewDefaultParser(opts ...Option) Parser {
	return NewParser(KnownFormats, opts...)
}

// NewParser builds new parser with the formats given. It panics if a
// format cannot be turned into a regular expression.
func NewParser(fmts []string, opts ...Option) Parser {
	p := new(parser)
	p.loc = time.UTC
	p.now = time.Now
	for _, opt := range opts {
		opt(p)
	}

	dtFmts := make([]string, 0, len(p.usrFmts)+len(fmts))
	dtFmts = append(dtFmts, p.usrFmts...) // user defined/custom formats go first,
	for _, f := range fmts {              // predefined/defaults formats go after
		if p.dayFirst {
			f = dayFirst(f)
		}
		dtFmts = append(dtFmts, f)
	}

	p.formats = make([]*Format, len(dtFmts))
	for i, fmtStr := range dtFmts {
		noDate := !strings.ContainsAny(fmtStr, "YMD")
		hasYear := !noDate && strings.Contains(fmtStr, "Y")
		hasLocation := strings.Contains(fmtStr, "Z")
		dRegexp := regexp.MustCompile(fmt.Sprintf("^(?P<%v>%v)$", dateGroup, regexpMap(fmtStr)))

		grps := dRegexp.SubexpNames()
		if len(grps) < 2 || grps[1] != dateGroup { // grps[0] is a whole line
			panic(fmt.Sprintf("regular expression=%s doesn't have "+
				"required '%s' group", dRegexp, dateGroup))
		}

		p.formats[i] = &Format{
			frmt:        fmtStr,
			dLayout:     dateMap(fmtStr),
			dRegexp:     dRegexp,
			hasLocation: hasLocation,
			hasYear:     hasYear,
			noDate:      noDate,
			parser:      p,
		}
	}
	return p
}

// Parse parses the whole buf, surrounding spaces are ignored
func (p *parser) Parse(buf []byte) (time.Time, *Format) {
	buf = bytes.TrimSpace(buf)
	for _, dFmt := range p.formats {
		tm, err := dFmt.Parse(buf)
		if err == nil {
			return tm, dFmt
		}
	}

	//no suitable format found, return empty time
	return time.Time{}, nil
}

// dateMap transforms human readable format (YYYY/MM/DD)
// to go-lang layout representation (2006/01/02), see terms table above
func dateMap(format string) string {
	layout := format
	for _, t := range terms {
		layout = strings.Replace(layout, t.format, t.layout, -1)
	}
	return layout
}

// regexpMap builds regular expression for a particular date format
// the resulting regexp is used in order to check the input before parsing,
// see terms table above
func regexpMap(format string) string {
	re := format
	for _, t := range terms {
		re = strings.Replace(re, t.format, t.expr, -1)
	}
	return re
}

// dayFirst swaps month and day of a numeric date format, e.g. MM/DD/YYYY
// becomes DD/MM/YYYY. Other formats are returned as is.
func dayFirst(format string) string {
	end := strings.IndexByte(format, ' ')
	if end < 0 {
		end = len(format)
	}
	dt := format[:end]
	for _, sep := range []string{"/", "-", "."} {
		parts := strings.Split(dt, sep)
		if len(parts) == 3 && (parts[0] == "MM" || parts[0] == "M") &&
			(parts[1] == "DD" || parts[1] == "D") {
			parts[0], parts[1] = parts[1], parts[0]
			return strings.Join(parts, sep) + format[end:]
		}
	}
	return format
}

//===================== Format =====================

// Parse parses buf which must completely match the format
func (f *Format) Parse(buf []byte) (tm time.Time, err error) {
	match := f.dRegexp.FindSubmatch(buf)

	//match[0] - wholes string, match[1] - date group
	if len(match) < 2 {
		return tm, fmt.Errorf("no match")
	}

	str := rbytes.ByteArrayToString(match[1])
	if f.hasLocation {
		tm, err = time.Parse(f.dLayout, str)
	} else {
		tm, err = time.ParseInLocation(f.dLayout, str, f.parser.loc)
	}

	if err != nil {
		return tm, err
	}

	if f.noDate {
		tm = f.parser.adjustDate(tm)
	} else if !f.hasYear {
		//no year given, trying to add one...
		tm = f.parser.adjustYear(tm)
	}
	return tm, nil
}

// GetFormat returns the user friendly notation of the format
func (f *Format) GetFormat() string {
	return f.frmt
}

func (p *parser) adjustYear(tm time.Time) time.Time {
	now := p.now().In(tm.Location())
	year := now.Year()
	if tm.Month() > now.Month() {
		year--
	}

	return time.Date(year, tm.Month(), tm.Day(), tm.Hour(),
		tm.Minute(), tm.Second(), tm.Nanosecond(), tm.Location())
}

func (p *parser) adjustDate(tm time.Time) time.Time {
	y, M, d := p.now().In(tm.Location()).Date()
	h, m, s := tm.Clock()
	return time.Date(y, M, d, h, m, s, tm.Nanosecond(), tm.Location())
}
