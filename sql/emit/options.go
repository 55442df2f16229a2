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

package emit

import (
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// Options configures emission behavior that varies by deployment
// (spec.md §4.3's affinity-biased comparison rule only applies from a
// given on-disk format version onward).
type Options struct {
	// SchemaFormat mirrors the on-disk schema format number; text-affinity
	// comparison opcode selection only applies at SchemaFormat >= 4,
	// matching the source's file-format gate for this optimization.
	SchemaFormat int `yaml:"schema_format"`

	// CoerceOversizedIntegers, when true, downgrades an integer literal
	// too large for an int64 into a string push (spec.md §4.3,
	// oversized-literal rule); when false such a literal is pushed as
	// an Integer with its text unchanged.
	CoerceOversizedIntegers bool `yaml:"coerce_oversized_integers"`
}

// DefaultOptions matches the source's modern behavior: affinity-biased
// comparisons on, oversized integers coerced to string pushes.
func DefaultOptions() Options {
	return Options{SchemaFormat: 4, CoerceOversizedIntegers: true}
}

// LoadOptions reads YAML-encoded Options from path, starting from
// DefaultOptions so an omitted field keeps its default.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return opts, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, err
	}
	return opts, nil
}
