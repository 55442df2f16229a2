// Copyright 2020-2021 Dolthub, Inc.
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

package sorter

import (
	"io/ioutil"
	"math"

	"gopkg.in/yaml.v2"
)

// MaxPMASizeUnbounded is the Config.MaxPMASize sentinel that disables
// the max-size flush trigger entirely (spec.md Testable Property 8:
// "never spill"). A MaxPMASize of 0 is the opposite extreme: every
// write that leaves anything in the in-memory list is over the
// threshold, forcing a flush on each write.
const MaxPMASizeUnbounded = math.MaxInt64

// FanIn is the incremental-merge fan-in constant (spec.md §4.4: "a
// fan-in constant (16)").
const FanIn = 16

// PageSize is the unit the PMA writer/reader coalesce I/O into
// (spec.md §4.4: "page-aligned buffered writer").
const PageSize = 4096

// Config holds the sorter's tunable knobs, loadable from YAML the way
// the teacher's benchmark/_example tooling loads run parameters
// (spec.md §4.4, §5).
type Config struct {
	// MinPMASize is the "heap nearly full" flush threshold: once the
	// in-memory list exceeds this and HeapHint reports true, flush.
	MinPMASize int64 `yaml:"min_pma_size"`
	// MaxPMASize is the hard flush threshold. 0 forces a flush after
	// every write; MaxPMASizeUnbounded disables this trigger.
	MaxPMASize int64 `yaml:"max_pma_size"`
	// Workers is the number of background worker goroutines for
	// multi-threaded mode. 0 means single-threaded cooperative mode
	// (spec.md §5).
	Workers int `yaml:"workers"`
}

// DefaultConfig matches the single-threaded, 10-page/cache-size-scaled
// defaults the source computes from the page size and cache size at
// init time (spec.md §4.4's SORTER_MIN_WORKING convention), expressed
// here as plain byte counts since this module has no page-cache
// subsystem to derive them from.
func DefaultConfig() Config {
	return Config{
		MinPMASize: 10 * PageSize,
		MaxPMASize: MaxPMASizeUnbounded,
		Workers:    0,
	}
}

// LoadConfig reads YAML-encoded Config from path, starting from
// DefaultConfig so an omitted field keeps its default.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
