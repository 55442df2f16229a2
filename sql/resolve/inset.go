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

import (
	"sync"

	"github.com/pilosa/pilosa/roaring"

	"github.com/dolthub/sqlcore/sql/ast"
)

// constSet is the runtime-lookup-set instance a resolved IN
// (value-list) points to by SetID (spec.md §4.2, §4.3: "SetFound
// set_identifier, target"). When every element folds to a 32-bit
// integer it is backed by a roaring.Bitmap (the same structure the
// pack's pilosa-backed index driver uses for membership tests),
// giving O(1) membership without per-element boxing; otherwise it
// falls back to a plain string set (map) for text/mixed lists.
type constSet struct {
	ints *roaring.Bitmap
	text map[string]bool
}

// Contains reports whether the rendered text form of a probe value is
// a member. Integer members are also probed through the bitmap when
// the probe parses as an integer, so `WHERE x IN (1,2,3)` doesn't pay
// for string hashing on the hot path.
func (s *constSet) Contains(text string, asInt int64, isInt bool) bool {
	if isInt && s.ints != nil {
		return s.ints.Contains(uint64(uint32(asInt)))
	}
	return s.text != nil && s.text[text]
}

var (
	setsMu sync.Mutex
	sets   = map[int]*constSet{}
)

// internConstSet builds and registers the constant set for setID from
// list, called once per IN (value-list) node by resolveIn.
func internConstSet(setID int, list *ast.ExprList) {
	cs := &constSet{}
	allInt := true
	for _, it := range list.Items {
		if _, ok := IsInteger(it.Expr); !ok {
			allInt = false
			break
		}
	}
	if allInt {
		cs.ints = roaring.NewBitmap()
		for _, it := range list.Items {
			v, _ := IsInteger(it.Expr)
			cs.ints.Add(uint64(uint32(v)))
		}
	} else {
		cs.text = make(map[string]bool, len(list.Items))
		for _, it := range list.Items {
			if lit, ok := it.Expr.(*ast.Literal); ok {
				cs.text[lit.Tok.Text] = true
			}
		}
	}
	setsMu.Lock()
	sets[setID] = cs
	setsMu.Unlock()
}

// LookupSet returns the constant set registered for setID, if any.
// Consumed by a host VM's SetFound opcode implementation.
func LookupSet(setID int) (*constSet, bool) {
	setsMu.Lock()
	defer setsMu.Unlock()
	cs, ok := sets[setID]
	return cs, ok
}
