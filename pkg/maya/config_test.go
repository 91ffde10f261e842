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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigApply(t *testing.T) {
	c := GetDefaultConfig()
	assert.Equal(t, "UTC", c.Timezone)
	assert.Equal(t, "current", c.Prefer)
	assert.False(t, c.DayFirst)
	assert.NoError(t, c.Check())

	c.Apply(nil)
	assert.Equal(t, GetDefaultConfig(), c)

	fmts := []string{"DD.MM.YYYY"}
	c.Apply(&Config{Timezone: "Europe/Paris", DayFirst: true, Formats: fmts})
	assert.Equal(t, "Europe/Paris", c.Timezone)
	assert.Equal(t, "current", c.Prefer)
	assert.True(t, c.DayFirst)
	assert.Equal(t, fmts, c.Formats)
	fmts[0] = "changed"
	assert.Equal(t, "DD.MM.YYYY", c.Formats[0])

	// default values don't override
	c.Apply(&Config{})
	assert.Equal(t, "Europe/Paris", c.Timezone)
	assert.True(t, c.DayFirst)
	assert.Contains(t, c.String(), "Timezone=Europe/Paris")

	assert.Error(t, (&Config{Timezone: "Nowhere/Special"}).Check())
	assert.Error(t, (&Config{Prefer: "sometimes"}).Check())
}

func TestReadConfigFromFile(t *testing.T) {
	c, err := ReadConfigFromFile("")
	assert.NoError(t, err)
	assert.Nil(t, c)

	dir := t.TempDir()
	c, err = ReadConfigFromFile(filepath.Join(dir, "absent.json"))
	assert.NoError(t, err)
	assert.Nil(t, c)

	fn := filepath.Join(dir, "maya.json")
	require.NoError(t, ioutil.WriteFile(fn, []byte(`{"timezone": "America/Chicago", "dayFirst": true, "prefer": "past", "formats": ["DD.MM.YYYY"]}`), 0640))
	c, err = ReadConfigFromFile(fn)
	require.NoError(t, err)
	assert.Equal(t, &Config{Timezone: "America/Chicago", DayFirst: true, Prefer: "past", Formats: []string{"DD.MM.YYYY"}}, c)

	require.NoError(t, ioutil.WriteFile(fn, []byte(`{"timezone": `), 0640))
	_, err = ReadConfigFromFile(fn)
	assert.Error(t, err)

	// a directory cannot be read
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0750))
	_, err = ReadConfigFromFile(filepath.Join(dir, "sub"))
	assert.Error(t, err)
}

func TestConfigFromMap(t *testing.T) {
	c, err := ConfigFromMap(map[string]interface{}{
		"timezone":  "Asia/Tokyo",
		"day_first": "true",
		"prefer":    "future",
		"formats":   []string{"DD.MM.YYYY"},
	})
	require.NoError(t, err)
	assert.Equal(t, &Config{Timezone: "Asia/Tokyo", DayFirst: true, Prefer: "future", Formats: []string{"DD.MM.YYYY"}}, c)

	_, err = ConfigFromMap(map[string]interface{}{"day_first": "perhaps"})
	assert.Error(t, err)
}
