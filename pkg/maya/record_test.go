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
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	exp := Interval{start: FromDate(2019, time.March, 13, 10, 0, 0, 0, nil), end: FromDate(2019, time.March, 13, 11, 30, 0, 0, nil)}
	for _, rec := range []string{
		`start=2019-03-13T10:00:00Z end=2019-03-13T11:30:00Z`,
		`start="2019-03-13 10:00:00" duration=1h30m`,
		`end="2019-03-13 11:30" duration=PT90M name=meeting`,
		`interval=2019-03-13T10:00:00Z/PT1H30M`,
	} {
		iv, err := ParseRecord([]byte(rec))
		require.NoError(t, err, rec)
		assert.Equal(t, exp, iv, rec)
	}

	// human dates are accepted too
	iv, err := ParseRecord([]byte(`start=now duration=1h`))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, iv.Duration())

	tests := map[string]error{
		`start=2019-03-13T10:00:00Z`:                                      ErrIntervalArgs,
		`start=2019-03-13T10:00:00Z end=2019-03-13T11:30:00Z duration=1h`: ErrIntervalArgs,
		`start=2019-03-13T11:30:00Z end=2019-03-13T10:00:00Z`:             ErrInvalidInterval,
		`start=someday duration=1h`:                                       ErrUnparseable,
		`start=2019-03-13T10:00:00Z duration=sometime`:                    ErrUnparseable,
		`interval=2019-03-13T10:00:00Z`:                                   ErrUnparseable,
	}
	for rec, exp := range tests {
		_, err := ParseRecord([]byte(rec))
		assert.Equal(t, exp, errors.Cause(err), rec)
	}
}

func TestRecordReader(t *testing.T) {
	data := strings.Join([]string{
		"# meetings",
		"start=2019-03-13T10:00:00Z duration=1h",
		"",
		"start=2019-03-13T12:00:00Z end=2019-03-13T13:00:00Z",
		"start=2019-03-13T15:00:00Z",
		"interval=2019-03-14T10:00:00Z/PT1H",
	}, "\n")

	rr := defParser.NewRecordReader(strings.NewReader(data))
	ctx := context.Background()

	iv, err := rr.NextRecord(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2019-03-13T10:00:00Z/2019-03-13T11:00:00Z", iv.ISO8601())

	iv, err = rr.NextRecord(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2019-03-13T12:00:00Z/2019-03-13T13:00:00Z", iv.ISO8601())

	_, err = rr.NextRecord(ctx)
	assert.Equal(t, ErrIntervalArgs, errors.Cause(err))
	assert.Contains(t, err.Error(), "line 5")

	// the last line has no line feed
	iv, err = rr.NextRecord(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2019-03-14T10:00:00Z/2019-03-14T11:00:00Z", iv.ISO8601())

	_, err = rr.NextRecord(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestRecordReaderReadAll(t *testing.T) {
	long := "start=2019-03-13T10:00:00Z duration=1h note=" + strings.Repeat("x", 3*recordBufSize)
	rr := defParser.NewRecordReader(strings.NewReader(long + "\n" + "start=2019-03-13T12:00:00Z duration=2h\n"))
	ivs, err := rr.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, ivs, 2)
	assert.Equal(t, 2*time.Hour, ivs[1].Duration())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rr = defParser.NewRecordReader(strings.NewReader("start=2019-03-13T12:00:00Z duration=2h\n"))
	ivs, err = rr.ReadAll(ctx)
	assert.Equal(t, context.Canceled, err)
	assert.Empty(t, ivs)
}
