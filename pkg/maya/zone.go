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
	"strings"
	"sync"
	"time"

	"github.com/jrivets/log4g"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

var (
	zoneLog   = log4g.GetLogger("maya.zone")
	locations sync.Map
	zoneLoads singleflight.Group
)

// LoadLocation returns the location for the IANA zone name provided. Empty
// name and "UTC" give time.UTC. Loaded locations are cached for the process
// lifetime, the zone database is never consulted twice for the same name.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "UTC") {
		return time.UTC, nil
	}

	if loc, ok := locations.Load(name); ok {
		return loc.(*time.Location), nil
	}

	// concurrent first loads of a name share one zone database read
	v, err, _ := zoneLoads.Do(name, func() (interface{}, error) {
		if loc, ok := locations.Load(name); ok {
			return loc, nil
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, err
		}
		zoneLog.Debug("Loaded timezone ", name)
		locations.Store(name, loc)
		return loc, nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unknown timezone %q", name)
	}
	return v.(*time.Location), nil
}
