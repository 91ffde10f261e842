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
	"sync"
	"time"

	"github.com/jrivets/log4g"
	"github.com/logrange/maya/pkg/parser/date"
	"github.com/logrange/maya/pkg/parser/human"
	"github.com/logrange/maya/pkg/parser/iso8601"
	"github.com/logrange/range/pkg/utils/bytes"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
	"github.com/xhit/go-str2duration/v2"
)

type (
	// Parser turns strings into DTs and Intervals according to its Config.
	// It is immutable and safe for concurrent use.
	Parser struct {
		cfg    Config
		loc    *time.Location
		dates  date.Parser
		human  *human.Parser
		logger log4g.Logger
	}
)

var (
	rfc2822Layouts = []string{
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		"2 Jan 2006 15:04:05 -0700",
		"2 Jan 2006 15:04:05 MST",
		"Mon, 2 Jan 2006 15:04 -0700",
	}

	defParser   *Parser
	zoneParsers sync.Map
)

func init() {
	p, err := NewParser(nil)
	if err != nil {
		panic(err)
	}
	defParser = p
}

// NewParser creates the parser for the configuration, nil cfg means
// GetDefaultConfig(). cfg is copied.
func NewParser(cfg *Config) (p *Parser, err error) {
	c := GetDefaultConfig()
	c.Apply(cfg)
	if err := c.Check(); err != nil {
		return nil, err
	}

	p = new(Parser)
	p.cfg = *c
	p.logger = log4g.GetLogger("maya.parser").WithId(fmt.Sprintf("{%s}", c.Timezone)).(log4g.Logger)
	p.loc, _ = LoadLocation(c.Timezone)
	prefer, _ := human.ParsePrefer(c.Prefer)

	// the date parser panics on formats it cannot compile
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, errors.Errorf("bad date formats %v: %v", c.Formats, r)
		}
	}()
	p.dates = date.NewDefaultParser(
		date.WithLocation(p.loc),
		date.WithDayFirst(c.DayFirst),
		date.WithFormats(c.Formats...),
	)
	p.human = human.NewParser(
		human.WithLocation(p.loc),
		human.WithPrefer(prefer),
		human.WithDayFirst(c.DayFirst),
		human.WithFormats(c.Formats...),
	)
	p.logger.Debug("New parser ", c)
	return p, nil
}

// Config returns a copy of the parser configuration
func (p *Parser) Config() *Config {
	return deepcopy.Copy(&p.cfg).(*Config)
}

// Location returns the zone used for values without a zone
func (p *Parser) Location() *time.Location {
	return p.loc
}

// Parse parses a machine produced date-time: ISO 8601 in any of its forms
// first, then the known date formats like RFC 2822 or "01/05/2016".
func (p *Parser) Parse(s string) (DT, error) {
	t, err := iso8601.Parse(s, p.loc)
	if err == nil {
		return FromTime(t), nil
	}
	p.logger.Trace("Not an ISO 8601 value ", s, ": ", err)

	if t, f := p.dates.Parse(bytes.StringToByteArray(s)); f != nil {
		p.logger.Trace("Value ", s, " matched format ", f.GetFormat())
		return FromTime(t), nil
	}
	return DT{}, errors.Wrapf(ErrUnparseable, "could not parse %q", s)
}

// When parses a date-time written by people, like "tomorrow noon" or
// "3 days ago", relative to the current time.
func (p *Parser) When(s string) (DT, error) {
	return p.WhenAt(s, Now())
}

// WhenAt is When relative to ref
func (p *Parser) WhenAt(s string, ref DT) (DT, error) {
	t, err := p.human.ParseAt(s, ref.Time())
	if err != nil {
		p.logger.Debug("Could not parse human value ", s, ": ", err)
		return DT{}, errors.Wrapf(ErrUnparseable, "%s", err)
	}
	return FromTime(t), nil
}

// ParseInterval parses the ISO 8601 "start/end", "start/duration" and
// "duration/end" interval forms.
func (p *Parser) ParseInterval(s string) (Interval, error) {
	start, end, err := iso8601.ParseInterval(s, p.loc)
	if err != nil {
		return Interval{}, errors.Wrapf(ErrUnparseable, "%s", err)
	}
	return IntervalFromTimes(start, end)
}

// Parse parses s with the default parser, see Parser.Parse
func Parse(s string) (DT, error) {
	return defParser.Parse(s)
}

// When parses s with the default parser, see Parser.When
func When(s string) (DT, error) {
	return defParser.When(s)
}

// WhenIn is When with days counted in the timezone given by name
func WhenIn(s, zone string) (DT, error) {
	p, err := parserForZone(zone)
	if err != nil {
		return DT{}, err
	}
	return p.When(s)
}

// ParseInterval parses s with the default parser, see Parser.ParseInterval
func ParseInterval(s string) (Interval, error) {
	return defParser.ParseInterval(s)
}

// ParseISO8601 parses ISO 8601 date-times only. Values without a zone are UTC.
func ParseISO8601(s string) (DT, error) {
	t, err := iso8601.Parse(s, time.UTC)
	if err != nil {
		return DT{}, errors.Wrapf(ErrUnparseable, "%s", err)
	}
	return FromTime(t), nil
}

// ParseRFC2822 parses values like "Mon, 21 Feb 1994 00:00:00 GMT"
func ParseRFC2822(s string) (DT, error) {
	s = strings.TrimSpace(s)
	for _, l := range rfc2822Layouts {
		if t, err := time.Parse(l, s); err == nil {
			return FromTime(t), nil
		}
	}
	return DT{}, errors.Wrapf(ErrUnparseable, "%q is not an RFC 2822 date", s)
}

// ParseRFC3339 parses values like "2016-01-01T00:00:00.00Z"
func ParseRFC3339(s string) (DT, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return DT{}, errors.Wrapf(ErrUnparseable, "%q is not an RFC 3339 date: %s", s, err)
	}
	return FromTime(t), nil
}

// ParseDuration parses compact durations like "1d2h30m" or "2w", where a
// day is 24 hours, and fixed ISO 8601 durations like "PT1H30M" or "P2D".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	d, err := str2duration.ParseDuration(s)
	if err == nil {
		return d, nil
	}

	p, perr := iso8601.ParsePeriod(s)
	if perr != nil {
		return 0, errors.Wrapf(ErrUnparseable, "%q is not a duration: %s", s, err)
	}
	d, err = p.Duration()
	if err != nil {
		return 0, errors.Wrapf(ErrUnparseable, "%s", err)
	}
	return d, nil
}

func parserForZone(zone string) (*Parser, error) {
	if p, ok := zoneParsers.Load(zone); ok {
		return p.(*Parser), nil
	}
	p, err := NewParser(&Config{Timezone: zone})
	if err != nil {
		return nil, err
	}
	act, _ := zoneParsers.LoadOrStore(zone, p)
	return act.(*Parser), nil
}
