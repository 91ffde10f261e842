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
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/kr/logfmt"
	"github.com/pkg/errors"
)

type (
	// recordFields collects logfmt key-value pairs
	recordFields map[string]string

	// RecordReader reads interval records from a stream, one logfmt record
	// per line:
	//
	//	start="2019-03-13 10:00" end=2019-03-13T12:00:00Z
	//	start=2019-03-13T10:00:00Z duration=1h30m
	//	interval=2019-03-13T10:00:00Z/PT90M
	//
	// Empty lines and lines starting with '#' are skipped.
	RecordReader struct {
		r    *bufio.Reader
		p    *Parser
		line int
	}
)

const recordBufSize = 4096

func (rf recordFields) HandleLogfmt(key, val []byte) error {
	rf[string(key)] = string(val)
	return nil
}

// ParseRecord parses one logfmt interval record with the default parser,
// see Parser.ParseRecord
func ParseRecord(line []byte) (Interval, error) {
	return defParser.ParseRecord(line)
}

// ParseRecord parses a logfmt record into an interval. The record has
// either the "interval" key with an ISO 8601 interval, or exactly two of
// "start", "end" and "duration" keys. Dates are tried as machine formats
// first and then as human expressions. Other keys are ignored.
func (p *Parser) ParseRecord(line []byte) (Interval, error) {
	rf := make(recordFields)
	if err := logfmt.Unmarshal(line, rf); err != nil {
		return Interval{}, errors.Wrapf(ErrUnparseable, "bad logfmt record %q: %s", line, err)
	}

	if v, ok := rf["interval"]; ok {
		return p.ParseInterval(v)
	}

	var spec IntervalSpec
	if v, ok := rf["start"]; ok {
		dt, err := p.parseAny(v)
		if err != nil {
			return Interval{}, err
		}
		spec.Start = &dt
	}
	if v, ok := rf["end"]; ok {
		dt, err := p.parseAny(v)
		if err != nil {
			return Interval{}, err
		}
		spec.End = &dt
	}
	if v, ok := rf["duration"]; ok {
		d, err := ParseDuration(v)
		if err != nil {
			return Interval{}, err
		}
		spec.Duration = &d
	}
	return spec.Build()
}

func (p *Parser) parseAny(s string) (DT, error) {
	if dt, err := p.Parse(s); err == nil {
		return dt, nil
	}
	return p.When(s)
}

// NewRecordReader returns the reader of interval records from r
func (p *Parser) NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{r: bufio.NewReaderSize(r, recordBufSize), p: p}
}

// NextRecord returns the next interval from the stream. It returns io.EOF
// when the stream is over. Errors of bad records tell the line number,
// the reader can be used after them.
func (rr *RecordReader) NextRecord(ctx context.Context) (Interval, error) {
	for {
		line, err := rr.readLine(ctx)
		if err != nil {
			return Interval{}, err
		}
		rr.line++

		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		iv, err := rr.p.ParseRecord(line)
		if err != nil {
			return Interval{}, errors.Wrapf(err, "line %d", rr.line)
		}
		return iv, nil
	}
}

// ReadAll reads intervals until the end of the stream
func (rr *RecordReader) ReadAll(ctx context.Context) ([]Interval, error) {
	var res []Interval
	for {
		iv, err := rr.NextRecord(ctx)
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			return res, err
		}
		res = append(res, iv)
	}
}

// readLine reads the next line of any length. It returns io.EOF only
// when there is no data to be read.
func (rr *RecordReader) readLine(ctx context.Context) ([]byte, error) {
	var buf []byte
	for ctx.Err() == nil {
		line, err := rr.r.ReadSlice('\n')
		switch err {
		case nil:
			return concatBufs(buf, line), nil
		case bufio.ErrBufferFull:
			buf = concatBufs(buf, line)
			continue
		case io.EOF:
			buf = concatBufs(buf, line)
			if len(buf) == 0 {
				return nil, io.EOF
			}
			return buf, nil
		}
		return nil, err
	}
	return nil, ctx.Err()
}

func concatBufs(b1, b2 []byte) []byte {
	nb := make([]byte, len(b1)+len(b2))
	copy(nb[:len(b1)], b1)
	copy(nb[len(b1):], b2)
	return nb
}
