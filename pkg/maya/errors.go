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
)

var (
	// ErrInvalidInterval is returned when an interval would end before it starts,
	// or a negative duration is used to build one.
	ErrInvalidInterval = fmt.Errorf("interval cannot end before it starts")

	// ErrIntervalArgs is returned when not exactly two of start, end and duration
	// are provided for an interval.
	ErrIntervalArgs = fmt.Errorf("exactly 2 of start, end and duration must be specified")

	// ErrNonPositive is returned for non-positive chunk, grid or step durations.
	ErrNonPositive = fmt.Errorf("duration must be positive")

	// ErrTypeMismatch is returned when a dynamic value is not of the expected type.
	ErrTypeMismatch = fmt.Errorf("unexpected value type")

	// ErrUnparseable is returned when a string cannot be turned into a DT.
	ErrUnparseable = fmt.Errorf("invalid datetime input")
)
