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
	"time"

	"github.com/pkg/errors"
)

// ToDT converts dynamically typed DT or time.Time to DT. Any other type
// gives ErrTypeMismatch.
func ToDT(v interface{}) (DT, error) {
	switch val := v.(type) {
	case DT:
		return val, nil
	case *DT:
		if val != nil {
			return *val, nil
		}
	case time.Time:
		return FromTime(val), nil
	case *time.Time:
		if val != nil {
			return FromTime(*val), nil
		}
	}
	return DT{}, errors.Wrapf(ErrTypeMismatch, "expecting DT or time.Time, but got %T", v)
}

// maxDurationSeconds is the largest number of seconds time.Duration holds
const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

// ToDuration converts integers, which are seconds, and time.Duration to
// time.Duration. Any other type, or seconds time.Duration cannot hold
// (about 292 years), gives ErrTypeMismatch.
func ToDuration(v interface{}) (time.Duration, error) {
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case int:
		return secondsToDuration(int64(val))
	case int32:
		return secondsToDuration(int64(val))
	case int64:
		return secondsToDuration(val)
	case uint:
		if uint64(val) > uint64(maxDurationSeconds) {
			return 0, errors.Wrapf(ErrTypeMismatch, "%d seconds overflow time.Duration", val)
		}
		return secondsToDuration(int64(val))
	case uint32:
		return secondsToDuration(int64(val))
	}
	return 0, errors.Wrapf(ErrTypeMismatch, "expecting integer seconds or time.Duration, but got %T", v)
}

func secondsToDuration(sec int64) (time.Duration, error) {
	if sec > maxDurationSeconds || sec < -maxDurationSeconds {
		return 0, errors.Wrapf(ErrTypeMismatch, "%d seconds overflow time.Duration", sec)
	}
	return time.Duration(sec) * time.Second, nil
}

// CompareValues compares two dynamically typed instants, see ToDT and
// DT.Compare.
func CompareValues(a, b interface{}) (int, error) {
	da, err := ToDT(a)
	if err != nil {
		return 0, err
	}
	db, err := ToDT(b)
	if err != nil {
		return 0, err
	}
	return da.Compare(db), nil
}
