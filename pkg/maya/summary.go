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
	"time"

	"github.com/montanaflynn/stats"
)

// Summary describes a set of intervals
type Summary struct {
	// Count is the number of intervals given
	Count int
	// Spans are the intervals after Flatten
	Spans []Interval
	// Covered is the time covered by at least one interval
	Covered time.Duration
	// Gaps are the holes between the spans
	Gaps []Interval
	// Mean, Median and Max are over the given interval durations
	Mean   time.Duration
	Median time.Duration
	Max    time.Duration
}

// Summarize flattens ivs and computes the duration statistics
func Summarize(ivs []Interval) Summary {
	s := Summary{Count: len(ivs), Spans: Flatten(ivs)}
	if len(ivs) == 0 {
		return s
	}

	for i, sp := range s.Spans {
		s.Covered += sp.Duration()
		if i > 0 {
			s.Gaps = append(s.Gaps, Interval{start: s.Spans[i-1].end, end: sp.start})
		}
	}

	durs := make(stats.Float64Data, len(ivs))
	for i, iv := range ivs {
		durs[i] = iv.Duration().Seconds()
	}
	// errors are returned for empty input only
	mean, _ := durs.Mean()
	median, _ := durs.Median()
	max, _ := durs.Max()
	s.Mean = seconds(mean)
	s.Median = seconds(median)
	s.Max = seconds(max)
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("{Count=%d, Spans=%d, Covered=%s, Gaps=%d, Mean=%s, Median=%s, Max=%s}",
		s.Count, len(s.Spans), s.Covered, len(s.Gaps), s.Mean, s.Median, s.Max)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
