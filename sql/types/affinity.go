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

// Package types holds the coarse type system shared by sql/ast,
// sql/resolve and sql/emit: affinity (spec.md §3, glossary) and the
// literal-folding helpers the resolver and emitter both need.
package types

// Affinity is the coarse type an expression or column is treated as
// for comparison purposes (spec.md glossary).
type Affinity uint8

const (
	// AffinityNone marks a node whose affinity has not yet been
	// computed by the type-inference pass.
	AffinityNone Affinity = iota
	AffinityNumeric
	AffinityText
)

func (a Affinity) String() string {
	switch a {
	case AffinityNumeric:
		return "numeric"
	case AffinityText:
		return "text"
	default:
		return "none"
	}
}
