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

package main

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/logrange/maya/pkg/maya"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInputVars(t *testing.T) {
	var split command
	for _, c := range commands {
		if c.name == cmdSplitName {
			split = c
		}
	}
	vars := getInputVars(split.matcher, "split 2016-01-01/P1D 6h")
	assert.Equal(t, "2016-01-01/P1D 6h", vars[cmdSplitName])
	assert.False(t, split.matcher.MatchString("split 2016-01-01/P1D"))
}

func TestExecCmd(t *testing.T) {
	p, err := maya.NewParser(nil)
	require.NoError(t, err)
	cfg := &shellConfig{parser: p, format: "iso"}
	ctx := context.Background()

	assert.Error(t, execCmd("unknown", cfg, ctx))
	assert.NoError(t, execCmd("parse 2016-W07T09", cfg, ctx))
	assert.Error(t, execCmd("parse someday", cfg, ctx))

	assert.NoError(t, execCmd("setopt timezone America/New_York", cfg, ctx))
	assert.Equal(t, "America/New_York", cfg.parser.Location().String())
	assert.NoError(t, execCmd("setopt day-first on", cfg, ctx))
	assert.True(t, cfg.parser.Config().DayFirst)
	assert.Equal(t, "America/New_York", cfg.parser.Config().Timezone)
	assert.NoError(t, execCmd("setopt format epoch", cfg, ctx))
	assert.Equal(t, "epoch", cfg.format)

	assert.Error(t, execCmd("setopt timezone Mars/Olympus", cfg, ctx))
	assert.Error(t, execCmd("setopt day-first maybe", cfg, ctx))
	assert.Error(t, execCmd("setopt color on", cfg, ctx))
	assert.Equal(t, "America/New_York", cfg.parser.Config().Timezone)

	assert.Error(t, execCmd("split 2016-01-01/P1D 0s", cfg, ctx))
}

func TestFormatWith(t *testing.T) {
	p, err := maya.NewParser(&maya.Config{Timezone: "Asia/Kolkata"})
	require.NoError(t, err)
	cfg := &shellConfig{parser: p}
	dt := maya.FromDate(2016, 1, 1, 0, 0, 0, 0, nil)

	assert.Equal(t, "2016-01-01T00:00:00Z", formatWith(cfg, dt))
	cfg.format = "epoch"
	assert.Equal(t, "1451606400", formatWith(cfg, dt))
	cfg.format = "2006-01-02 15:04 MST"
	assert.Equal(t, "2016-01-01 05:30 IST", formatWith(cfg, dt))
}

func TestConfigFromEnv(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "maya.env")
	require.NoError(t, ioutil.WriteFile(fn, []byte("MAYA_PREFER=past\nMAYA_DAY_FIRST=true\n"), 0640))
	t.Setenv("MAYA_TIMEZONE", "Europe/Paris")
	t.Setenv("MAYA_PREFER", "future")
	// set but empty, the file value is not used
	t.Setenv("MAYA_DAY_FIRST", "")

	c, err := configFromEnv(fn)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", c.Timezone)
	assert.Equal(t, "future", c.Prefer)
	assert.False(t, c.DayFirst)

	c, err = configFromEnv(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", c.Timezone)
}
