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

package resolve

// dequote strips a single layer of matching quote characters
// ("double", `backtick` or [bracket]) from name, the way the source
// normalizes identifier parts before lookup (spec.md §4.2 step 1).
// Unquoted input passes through unchanged.
func dequote(name string) string {
	if len(name) < 2 {
		return name
	}
	first, last := name[0], name[len(name)-1]
	switch {
	case first == '"' && last == '"':
		return name[1 : len(name)-1]
	case first == '`' && last == '`':
		return name[1 : len(name)-1]
	case first == '[' && last == ']':
		return name[1 : len(name)-1]
	default:
		return name
	}
}

// wasDoubleQuoted reports whether name was written with double quotes
// in the source text — needed to distinguish an unmatched
// double-quoted identifier (treated as a string literal by the
// caller, spec.md §4.2 step 6) from an unmatched bare identifier (an
// error).
func wasDoubleQuoted(name string) bool {
	return len(name) >= 2 && name[0] == '"' && name[len(name)-1] == '"'
}
