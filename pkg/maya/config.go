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
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/jrivets/log4g"
	"github.com/logrange/maya/pkg/parser/human"
	"github.com/mitchellh/mapstructure"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
)

// Config defines how strings are turned into DTs
type Config struct {
	// Timezone is the IANA zone name used for values without a zone, and
	// for counting days in human expressions like "tomorrow". UTC if empty.
	Timezone string `json:"timezone" mapstructure:"timezone"`

	// DayFirst makes numeric dates like 01/05/2016 be read as 1st of May
	DayFirst bool `json:"dayFirst" mapstructure:"day_first"`

	// Prefer is one of "current", "past" or "future", it tells which
	// date a bare weekday like "friday" refers to.
	Prefer string `json:"prefer" mapstructure:"prefer"`

	// Formats contains additional date formats like "DD.MM.YYYY HH:mm",
	// they are tried before the known ones.
	Formats []string `json:"formats" mapstructure:"formats"`
}

var configLog = log4g.GetLogger("maya.config")

// GetDefaultConfig returns the configuration of the package-level parser
func GetDefaultConfig() *Config {
	c := new(Config)
	c.Timezone = "UTC"
	c.Prefer = string(human.PreferCurrent)
	return c
}

// Apply overrides c's properties by non-default values from cfg
func (c *Config) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if len(cfg.Timezone) > 0 {
		c.Timezone = cfg.Timezone
	}
	if cfg.DayFirst {
		c.DayFirst = cfg.DayFirst
	}
	if len(cfg.Prefer) > 0 {
		c.Prefer = cfg.Prefer
	}
	if len(cfg.Formats) > 0 {
		c.Formats = deepcopy.Copy(cfg.Formats).([]string)
	}
}

// Check returns an error if the configuration cannot be used
func (c *Config) Check() error {
	if _, err := LoadLocation(c.Timezone); err != nil {
		return err
	}
	if _, err := human.ParsePrefer(c.Prefer); err != nil {
		return err
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("{Timezone=%s, DayFirst=%t, Prefer=%s, Formats=%v}",
		c.Timezone, c.DayFirst, c.Prefer, c.Formats)
}

// ReadConfigFromFile reads the JSON config file. It returns nil, if
// filename is empty or the file doesn't exist.
func ReadConfigFromFile(filename string) (*Config, error) {
	if filename == "" {
		return nil, nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		configLog.Warn("There is no file ", filename, " for reading maya config, will use default configuration.")
		return nil, nil
	}

	cfgData, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read data from config file %s", filename)
	}

	c := &Config{}
	if err = json.Unmarshal(cfgData, c); err != nil {
		return nil, errors.Wrapf(err, "could not unmarshal json data from config file %s", filename)
	}

	configLog.Info("Configuration read from ", filename)
	return c, nil
}

// ConfigFromMap builds the config from loosely typed values, e.g. read from
// environment variables: {"timezone": "Europe/Paris", "day_first": "true"}
func ConfigFromMap(params map[string]interface{}) (*Config, error) {
	c := &Config{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           c,
	})
	if err != nil {
		return nil, err
	}
	if err = dec.Decode(params); err != nil {
		return nil, errors.Wrapf(err, "unable to decode params=%v", params)
	}
	return c, nil
}
